package pautas

import (
	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/professores"
	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

// MountRoutes attaches grade sheet routes with their role allow-lists.
// Workflow actions carry their own role gates inside the transition table;
// the route-level lists here stay the outer, locally auditable layer.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware, resolver professores.Resolver) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(
			shared.RoleProfessor, shared.RoleSecretaria, shared.RoleAdmin,
			shared.RoleSuperAdmin, shared.RoleCoordenador, shared.RoleDirecao, shared.RoleAluno,
		))
		r.Use(resolver.ResolveOptional)
		r.Get("/pautas", h.list)
		r.Get("/pautas/{id}", h.show)
		r.Get("/pautas/{id}/historico", h.historico)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleSecretaria, shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Post("/pautas", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleProfessor, shared.RoleSecretaria, shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Use(resolver.ResolveOptional)
		r.Put("/pautas/{id}/notas", h.updateNotas)
		r.Post("/pautas/{id}/submeter", h.transition(workflow.AcaoSubmeter))
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleSecretaria, shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Post("/pautas/{id}/aprovar", h.transition(workflow.AcaoAprovar))
		r.Post("/pautas/{id}/rejeitar", h.transition(workflow.AcaoRejeitar))
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Post("/pautas/{id}/bloquear", h.transition(workflow.AcaoBloquear))
		r.Post("/pautas/{id}/reabrir", h.transition(workflow.AcaoReabrir))
		r.Delete("/pautas/{id}", h.remove)
	})
}
