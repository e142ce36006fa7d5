package financeiro

import (
	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// MountRoutes attaches billing settings routes. Reading the fee policy is
// open to most staff roles; changing it stays with administrators.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(
			shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleFinanceiro,
			shared.RoleSecretaria, shared.RoleDirecao, shared.RolePOS, shared.RoleComercial,
		))
		r.Get("/financeiro/configuracao-multa", h.getMulta)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Put("/financeiro/configuracao-multa", h.updateMulta)
	})
}
