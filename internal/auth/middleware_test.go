package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

func authRequest(t *testing.T, mw func(http.Handler) http.Handler, token string) (*httptest.ResponseRecorder, *shared.Principal) {
	t.Helper()
	var captured *shared.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := shared.PrincipalFromContext(r.Context()); ok {
			captured = &p
		}
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)
	return rr, captured
}

func TestRequireAuthWithoutToken(t *testing.T) {
	mw := Middleware{Issuer: NewTokenIssuer("test-secret", time.Hour)}
	rr, _ := authRequest(t, mw.RequireAuth, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	mw := Middleware{Issuer: NewTokenIssuer("test-secret", time.Hour)}
	rr, _ := authRequest(t, mw.RequireAuth, "definitely.not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthAttachesPrincipal(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	mw := Middleware{Issuer: issuer}
	user := testUser()

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	rr, principal := authRequest(t, mw.RequireAuth, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, principal)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, user.Role, principal.Role)
}

func TestRequireAuthRejectsPendingScope(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	mw := Middleware{Issuer: issuer}

	token, err := issuer.IssuePending(testUser())
	require.NoError(t, err)

	rr, _ := authRequest(t, mw.RequireAuth, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequirePendingRejectsFullScope(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	mw := Middleware{Issuer: issuer}

	full, err := issuer.Issue(testUser())
	require.NoError(t, err)
	rr, _ := authRequest(t, mw.RequirePending, full)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	pending, err := issuer.IssuePending(testUser())
	require.NoError(t, err)
	rr, _ = authRequest(t, mw.RequirePending, pending)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequireInstitution(t *testing.T) {
	mw := Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(principal *shared.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
		if principal != nil {
			req = req.WithContext(shared.ContextWithPrincipal(req.Context(), *principal))
		}
		rr := httptest.NewRecorder()
		mw.RequireInstitution(next).ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)

	// Institution-less ADMIN cannot produce a tenant scope.
	rr := serve(&shared.Principal{UserID: uuid.New(), Role: shared.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// SUPER_ADMIN without institution gets the unrestricted scope.
	rr = serve(&shared.Principal{UserID: uuid.New(), Role: shared.RoleSuperAdmin})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	inst := uuid.New()
	rr = serve(&shared.Principal{UserID: uuid.New(), Role: shared.RoleSecretaria, InstitutionID: &inst})
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
