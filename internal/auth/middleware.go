package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Middleware verifies bearer tokens and attaches the principal to context.
type Middleware struct {
	Issuer *TokenIssuer
	Logger *slog.Logger
}

// RequireAuth rejects requests without a valid full-scope bearer token.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return m.require(ScopeFull, next)
}

// RequirePending accepts only 2FA-pending tokens. Used by the verify endpoint.
func (m Middleware) RequirePending(next http.Handler) http.Handler {
	return m.require(Scope2FAPending, next)
}

func (m Middleware) require(scope string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verifyBearer(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid bearer token")
			return
		}
		if claims.Scope != scope {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token scope not accepted here")
			return
		}
		principal, err := claims.Principal()
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "malformed token claims")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireInstitution rejects principals that cannot produce a tenant scope.
// SUPER_ADMIN passes with an unrestricted scope.
func (m Middleware) RequireInstitution(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no principal")
			return
		}
		if _, err := principal.Scope(); err != nil {
			if m.Logger != nil {
				m.Logger.Warn("principal without institution",
					slog.String("user_id", principal.UserID.String()),
					slog.String("role", string(principal.Role)))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "institution scope required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) verifyBearer(r *http.Request) (*Claims, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := m.Issuer.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}
