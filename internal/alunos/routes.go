package alunos

import (
	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// MountRoutes attaches student routes with their role allow-lists.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(
			shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleSecretaria,
			shared.RoleProfessor, shared.RoleCoordenador, shared.RoleDirecao,
		))
		r.Get("/alunos", h.list)
		r.Get("/alunos/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleSecretaria))
		r.Post("/alunos", h.create)
		r.Put("/alunos/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Delete("/alunos/{id}", h.remove)
	})
}
