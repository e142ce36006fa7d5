// Package rbac implements the flat per-route role allow-list guard.
package rbac

import (
	"log/slog"
	"net/http"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Middleware wires authorization guards for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Authorize ensures the principal's role appears in the allow-list. Exact
// set membership only; there is no hierarchy or inheritance between roles,
// so each route's list stays locally auditable. An empty list denies all.
func (m Middleware) Authorize(allowed ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no principal")
				return
			}
			if !principal.Role.In(allowed...) {
				if m.Logger != nil {
					m.Logger.Warn("role not allowed",
						slog.String("role", string(principal.Role)),
						slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "role not permitted for this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
