package presencas

import (
	"github.com/go-chi/chi/v5"

	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// MountRoutes attaches the user-authenticated attendance routes.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(
			shared.RoleRH, shared.RoleAdmin, shared.RoleSuperAdmin,
			shared.RoleSecretaria, shared.RoleDirecao,
		))
		r.Get("/presencas", h.list)
		r.Post("/presencas", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Get("/presencas/dispositivos", h.listDevices)
		r.Post("/presencas/dispositivos", h.registerDevice)
		r.Delete("/presencas/dispositivos/{id}", h.revokeDevice)
	})
}

// MountDeviceRoutes attaches the terminal ingestion route, authenticated
// by device token rather than a user session.
func (h *Handler) MountDeviceRoutes(r chi.Router, auth *DeviceAuthenticator) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Post("/presencas/dispositivo", h.devicePunch)
	})
}
