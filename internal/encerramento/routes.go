package encerramento

import (
	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// MountRoutes attaches closure routes. Reading is open to leadership
// roles; the close and reopen actions stay with administrators.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(
			shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleDirecao,
			shared.RoleSecretaria, shared.RoleCoordenador,
		))
		r.Get("/anos-letivos", h.listAnos)
		r.Get("/anos-letivos/{id}", h.showAno)
		r.Get("/encerramento/runs/{id}", h.showRun)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleDirecao))
		r.Post("/anos-letivos", h.createAno)
		r.Post("/encerramento/runs", h.startRun)
		r.Patch("/encerramento/checklist/{itemID}", h.updateChecklist)
		r.Post("/encerramento/runs/{id}/soft-close", h.softClose)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Post("/encerramento/runs/{id}/hard-close", h.hardClose)
		r.Post("/anos-letivos/{id}/reabrir", h.reopen)
	})
}
