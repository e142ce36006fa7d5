package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeFromInstitutionPrincipal(t *testing.T) {
	inst := uuid.New()
	p := Principal{UserID: uuid.New(), Role: RoleAdmin, InstitutionID: &inst}

	scope, err := p.Scope()
	require.NoError(t, err)
	assert.False(t, scope.AllInstitutions())
	assert.Equal(t, inst, scope.InstitutionID())
	assert.True(t, scope.Covers(inst))
	assert.False(t, scope.Covers(uuid.New()))
}

func TestScopeSuperAdminWithoutInstitution(t *testing.T) {
	p := Principal{UserID: uuid.New(), Role: RoleSuperAdmin}

	scope, err := p.Scope()
	require.NoError(t, err)
	assert.True(t, scope.AllInstitutions())
	assert.True(t, scope.Covers(uuid.New()))
}

func TestScopeSuperAdminBoundToInstitution(t *testing.T) {
	inst := uuid.New()
	p := Principal{UserID: uuid.New(), Role: RoleSuperAdmin, InstitutionID: &inst}

	scope, err := p.Scope()
	require.NoError(t, err)
	assert.False(t, scope.AllInstitutions(), "explicit institution narrows even SUPER_ADMIN")
	assert.False(t, scope.Covers(uuid.New()))
}

func TestScopeRefusedWithoutInstitution(t *testing.T) {
	for _, role := range AllRoles() {
		if role == RoleSuperAdmin {
			continue
		}
		p := Principal{UserID: uuid.New(), Role: role}
		_, err := p.Scope()
		assert.ErrorIs(t, err, ErrInstitutionRequired, "role %s", role)
		assert.True(t, p.RequiresInstitution())
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  professor ")
	require.NoError(t, err)
	assert.Equal(t, RoleProfessor, role)

	_, err = ParseRole("OVERLORD")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleAdmin.In(RoleSecretaria, RoleAdmin))
	assert.False(t, RoleAdmin.In(RoleSecretaria))
	assert.False(t, RoleAdmin.In())
}
