package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dsicola/dsicola-sub019/internal/alunos"
	"github.com/dsicola/dsicola-sub019/internal/auditoria"
	"github.com/dsicola/dsicola-sub019/internal/auth"
	"github.com/dsicola/dsicola-sub019/internal/encerramento"
	"github.com/dsicola/dsicola-sub019/internal/financeiro"
	"github.com/dsicola/dsicola-sub019/internal/observability"
	"github.com/dsicola/dsicola-sub019/internal/pautas"
	"github.com/dsicola/dsicola-sub019/internal/presencas"
	"github.com/dsicola/dsicola-sub019/internal/professores"
	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/termos"
	"github.com/dsicola/dsicola-sub019/internal/usuarios"
	"github.com/dsicola/dsicola-sub019/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware auth.Middleware
	RBACMiddleware rbac.Middleware
	Resolver       professores.Resolver
	DeviceAuth     *presencas.DeviceAuthenticator

	AuthHandler         *auth.Handler
	ProfessoresHandler  *professores.Handler
	AlunosHandler       *alunos.Handler
	PautasHandler       *pautas.Handler
	PresencasHandler    *presencas.Handler
	FinanceiroHandler   *financeiro.Handler
	EncerramentoHandler *encerramento.Handler
	UsuariosHandler     *usuarios.Handler
	AuditoriaHandler    *auditoria.Handler
	TermosHandler       *termos.Handler
	JobHandler          *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router. Auth routes are public; every
// other /api/v1 route sits behind the bearer-token middleware, and the
// device ingestion route carries its own token scheme.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		if params.PresencasHandler != nil && params.DeviceAuth != nil {
			params.PresencasHandler.MountDeviceRoutes(r, params.DeviceAuth)
		}

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)

			if params.TermosHandler != nil {
				params.TermosHandler.MountRoutes(r, params.RBACMiddleware)
			}
			if params.UsuariosHandler != nil {
				params.UsuariosHandler.MountRoutes(r, params.RBACMiddleware)
			}
			if params.AuditoriaHandler != nil {
				params.AuditoriaHandler.MountRoutes(r, params.RBACMiddleware)
			}

			r.Group(func(r chi.Router) {
				r.Use(params.AuthMiddleware.RequireInstitution)
				if params.ProfessoresHandler != nil {
					params.ProfessoresHandler.MountRoutes(r, params.RBACMiddleware, params.Resolver)
				}
				if params.AlunosHandler != nil {
					params.AlunosHandler.MountRoutes(r, params.RBACMiddleware)
				}
				if params.PautasHandler != nil {
					params.PautasHandler.MountRoutes(r, params.RBACMiddleware, params.Resolver)
				}
				if params.PresencasHandler != nil {
					params.PresencasHandler.MountRoutes(r, params.RBACMiddleware)
				}
				if params.FinanceiroHandler != nil {
					params.FinanceiroHandler.MountRoutes(r, params.RBACMiddleware)
				}
				if params.EncerramentoHandler != nil {
					params.EncerramentoHandler.MountRoutes(r, params.RBACMiddleware)
				}
			})
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
