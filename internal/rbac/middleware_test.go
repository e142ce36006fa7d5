package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

func doRequest(t *testing.T, guard func(http.Handler) http.Handler, principal *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), *principal))
	}
	rr := httptest.NewRecorder()
	guard(next).ServeHTTP(rr, req)
	return rr
}

func TestAuthorizeWithoutPrincipal(t *testing.T) {
	mw := Middleware{}
	rr := doRequest(t, mw.Authorize(shared.RoleAdmin), nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthorizeAllowsListedRole(t *testing.T) {
	mw := Middleware{}
	principal := shared.Principal{UserID: uuid.New(), Role: shared.RoleSecretaria}
	rr := doRequest(t, mw.Authorize(shared.RoleAdmin, shared.RoleSecretaria), &principal)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestAuthorizeRejectsUnlistedRole(t *testing.T) {
	mw := Middleware{}
	principal := shared.Principal{UserID: uuid.New(), Role: shared.RoleProfessor}
	rr := doRequest(t, mw.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin), &principal)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuthorizeNoHierarchy(t *testing.T) {
	mw := Middleware{}
	// SUPER_ADMIN gets no implicit pass on lists that omit it.
	principal := shared.Principal{UserID: uuid.New(), Role: shared.RoleSuperAdmin}
	rr := doRequest(t, mw.Authorize(shared.RoleProfessor), &principal)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuthorizeEmptyListDeniesAll(t *testing.T) {
	mw := Middleware{}
	for _, role := range shared.AllRoles() {
		principal := shared.Principal{UserID: uuid.New(), Role: role}
		rr := doRequest(t, mw.Authorize(), &principal)
		assert.Equal(t, http.StatusForbidden, rr.Code, "role %s", role)
	}
}
