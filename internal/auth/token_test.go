package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

func testUser() User {
	inst := uuid.New()
	return User{
		ID:            uuid.New(),
		Email:         "prof@escola.ao",
		Role:          shared.RoleProfessor,
		InstitutionID: &inst,
		IsActive:      true,
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := testUser()

	signed, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, ScopeFull, claims.Scope)
	assert.Equal(t, string(shared.RoleProfessor), claims.Role)

	principal, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, shared.RoleProfessor, principal.Role)
	require.NotNil(t, principal.InstitutionID)
	assert.Equal(t, *user.InstitutionID, *principal.InstitutionID)
}

func TestIssuePendingScope(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	signed, err := issuer.IssuePending(testUser())
	require.NoError(t, err)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, Scope2FAPending, claims.Scope)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("another-secret", time.Hour)

	signed, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	signed, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	_, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestClaimsPrincipalRejectsUnknownRole(t *testing.T) {
	claims := &Claims{Role: "OVERLORD"}
	claims.Subject = uuid.NewString()
	_, err := claims.Principal()
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
