package professores

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

type professorContextKey struct{}

// ContextWithProfessor stores the resolved professor in context.
func ContextWithProfessor(ctx context.Context, p Professor) context.Context {
	return context.WithValue(ctx, professorContextKey{}, p)
}

// FromContext extracts the resolved professor from context.
func FromContext(ctx context.Context) (Professor, bool) {
	p, ok := ctx.Value(professorContextKey{}).(Professor)
	return p, ok
}

// Resolver augments requests from PROFESSOR principals with their domain
// professor record, scoped to the principal's institution.
type Resolver struct {
	Repo   *Repository
	Logger *slog.Logger
}

// Resolve requires the principal to be a PROFESSOR with a resolvable record.
func (rv Resolver) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		professor, ok, err := rv.lookup(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if !ok {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "no professor record for this account")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithProfessor(r.Context(), professor)))
	})
}

// ResolveOptional attaches the record when resolvable and passes through
// otherwise. Used on routes shared between professor and staff flows.
func (rv Resolver) ResolveOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		professor, ok, err := rv.lookup(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if ok {
			r = r.WithContext(ContextWithProfessor(r.Context(), professor))
		}
		next.ServeHTTP(w, r)
	})
}

func (rv Resolver) lookup(r *http.Request) (Professor, bool, error) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok || principal.Role != shared.RoleProfessor {
		return Professor{}, false, nil
	}
	scope, err := principal.Scope()
	if err != nil {
		return Professor{}, false, nil
	}
	professor, err := rv.Repo.FindByUser(r.Context(), scope, principal.UserID)
	if err != nil {
		if err == shared.ErrNotFound {
			return Professor{}, false, nil
		}
		if rv.Logger != nil {
			rv.Logger.Error("resolve professor", slog.Any("error", err))
		}
		return Professor{}, false, err
	}
	return professor, true, nil
}
