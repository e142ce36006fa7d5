package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/dsicola/dsicola-sub019/internal/alunos"
	"github.com/dsicola/dsicola-sub019/internal/app"
	"github.com/dsicola/dsicola-sub019/internal/auditoria"
	"github.com/dsicola/dsicola-sub019/internal/auth"
	"github.com/dsicola/dsicola-sub019/internal/encerramento"
	"github.com/dsicola/dsicola-sub019/internal/financeiro"
	"github.com/dsicola/dsicola-sub019/internal/observability"
	"github.com/dsicola/dsicola-sub019/internal/pautas"
	"github.com/dsicola/dsicola-sub019/internal/platform/cache"
	"github.com/dsicola/dsicola-sub019/internal/platform/db"
	"github.com/dsicola/dsicola-sub019/internal/presencas"
	"github.com/dsicola/dsicola-sub019/internal/professores"
	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/termos"
	"github.com/dsicola/dsicola-sub019/internal/usuarios"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
	"github.com/dsicola/dsicola-sub019/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.Connect(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	termStore := shared.NewTermStore(dbpool, cfg.TermValidity)
	metrics := observability.NewMetrics()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	twoFactor := auth.NewTwoFactorManager(redisClient, "DSICOLA")
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, issuer, twoFactor)
	authMiddleware := auth.Middleware{Issuer: issuer, Logger: logger}
	rbacMiddleware := rbac.Middleware{Logger: logger}
	authHandler := auth.NewHandler(logger, authService, authMiddleware, rbacMiddleware, metrics, cfg.IsProduction())

	workflowRepo := workflow.NewRepository(dbpool)
	workflowService := workflow.NewService(workflowRepo, termStore, auditLogger, metrics, logger)

	professorRepo := professores.NewRepository(dbpool)
	resolver := professores.Resolver{Repo: professorRepo, Logger: logger}
	professoresHandler := professores.NewHandler(logger)

	alunosRepo := alunos.NewRepository(dbpool)
	alunosService := alunos.NewService(alunosRepo, auditLogger, logger)
	alunosHandler := alunos.NewHandler(logger, alunosService, cfg.IsProduction())

	pautasRepo := pautas.NewRepository(dbpool)
	pautasService := pautas.NewService(pautasRepo, workflowService, auditLogger, logger)
	pautasHandler := pautas.NewHandler(logger, pautasService, cfg.IsProduction())

	presencasRepo := presencas.NewRepository(dbpool)
	deviceAuth := presencas.NewDeviceAuthenticator(presencasRepo, redisClient, logger)
	presencasService := presencas.NewService(presencasRepo, deviceAuth, auditLogger, logger)
	presencasHandler := presencas.NewHandler(logger, presencasService, metrics, cfg.IsProduction())

	financeiroRepo := financeiro.NewRepository(dbpool)
	financeiroService := financeiro.NewService(financeiroRepo, auditLogger, logger)
	financeiroHandler := financeiro.NewHandler(logger, financeiroService, cfg.IsProduction())

	encerramentoRepo := encerramento.NewRepository(dbpool)
	encerramentoService := encerramento.NewService(encerramentoRepo, workflowService, termStore, auditLogger, logger)
	encerramentoHandler := encerramento.NewHandler(logger, encerramentoService, cfg.IsProduction())

	usuariosRepo := usuarios.NewRepository(dbpool)
	usuariosService := usuarios.NewService(usuariosRepo, auditLogger, logger)
	usuariosHandler := usuarios.NewHandler(logger, usuariosService, cfg.IsProduction())

	auditoriaRepo := auditoria.NewRepository(dbpool)
	auditoriaHandler := auditoria.NewHandler(logger, auditoriaRepo)

	termosHandler := termos.NewHandler(logger, termStore, cfg.IsProduction())

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthMiddleware:      authMiddleware,
		RBACMiddleware:      rbacMiddleware,
		Resolver:            resolver,
		DeviceAuth:          deviceAuth,
		AuthHandler:         authHandler,
		ProfessoresHandler:  professoresHandler,
		AlunosHandler:       alunosHandler,
		PautasHandler:       pautasHandler,
		PresencasHandler:    presencasHandler,
		FinanceiroHandler:   financeiroHandler,
		EncerramentoHandler: encerramentoHandler,
		UsuariosHandler:     usuariosHandler,
		AuditoriaHandler:    auditoriaHandler,
		TermosHandler:       termosHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
