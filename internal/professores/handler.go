package professores

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Handler exposes the authenticated professor's own record.
type Handler struct {
	logger *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	professor, ok := FromContext(r.Context())
	if !ok {
		// Resolve guarantees the record; reaching here means a wiring bug.
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no professor record for this account")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":             professor.ID,
		"user_id":        professor.UserID,
		"institution_id": professor.InstitutionID,
		"nome":           professor.Nome,
	})
}

// MountRoutes attaches professor self-service routes. Resolve is strict
// here: a PROFESSOR account without a domain record gets 403.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware, resolver Resolver) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleProfessor))
		r.Use(resolver.Resolve)
		r.Get("/professores/me", h.me)
	})
}
