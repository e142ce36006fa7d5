package professores

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMeReturnsResolvedProfessor(t *testing.T) {
	professor := Professor{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		InstitutionID: uuid.New(),
		Nome:          "Joana Domingos",
	}

	h := NewHandler(discardLogger())
	req := httptest.NewRequest(http.MethodGet, "/professores/me", nil)
	req = req.WithContext(ContextWithProfessor(req.Context(), professor))
	rec := httptest.NewRecorder()

	h.me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, professor.ID.String(), body["id"])
	assert.Equal(t, professor.Nome, body["nome"])
}

func TestMeWithoutRecordIsForbidden(t *testing.T) {
	h := NewHandler(discardLogger())
	req := httptest.NewRequest(http.MethodGet, "/professores/me", nil)
	rec := httptest.NewRecorder()

	h.me(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResolveRejectsNonProfessor(t *testing.T) {
	inst := uuid.New()
	principal := shared.Principal{UserID: uuid.New(), Role: shared.RoleSecretaria, InstitutionID: &inst}

	rv := Resolver{Logger: discardLogger()}
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true })

	req := httptest.NewRequest(http.MethodGet, "/professores/me", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()

	rv.Resolve(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)
}

func TestResolveOptionalPassesThroughNonProfessor(t *testing.T) {
	principal := shared.Principal{UserID: uuid.New(), Role: shared.RoleAdmin}

	rv := Resolver{Logger: discardLogger()}
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := FromContext(r.Context())
		assert.False(t, ok)
		reached = true
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/professores/me", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()

	rv.ResolveOptional(next).ServeHTTP(rec, req)

	assert.True(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
