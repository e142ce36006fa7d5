package auditoria

import (
	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// MountRoutes attaches the audit trail route.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAuditor, shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Get("/auditoria", h.list)
	})
}
