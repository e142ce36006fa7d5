package usuarios

import (
	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// MountRoutes attaches account administration routes.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Get("/usuarios", h.list)
		r.Get("/usuarios/{id}", h.show)
		r.Post("/usuarios", h.create)
		r.Put("/usuarios/{id}", h.update)
		r.Post("/usuarios/{id}/reset-password", h.resetPassword)
	})
}
