package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/observability"
	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	middleware Middleware
	rbac       rbac.Middleware
	validator  *validator.Validate
	metrics    *observability.Metrics
	production bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, middleware Middleware, guard rbac.Middleware, metrics *observability.Metrics, production bool) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		middleware: middleware,
		rbac:       guard,
		validator:  validator.New(),
		metrics:    metrics,
		production: production,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.middleware.RequirePending)
		r.Post("/2fa/verify", h.handleVerify)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.middleware.RequireAuth)
		r.Post("/2fa/setup", h.handleSetup)
		r.Post("/2fa/confirm", h.handleConfirm)
		r.Post("/2fa/disable", h.handleDisable)
		r.Get("/2fa/status", h.handleStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.middleware.RequireAuth)
		r.Use(h.rbac.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin))
		r.Post("/2fa/reset", h.handleReset)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type resetRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if detail, ok := h.validate(req); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			h.metrics.ObserveLoginFailure()
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":               result.Token,
		"two_factor_required": result.TwoFactorRequired,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req codeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if detail, ok := h.validate(req); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}
	token, err := h.service.Complete2FA(r.Context(), principal.UserID, req.Code)
	if err != nil {
		if errors.Is(err, ErrCodigoInvalido) || errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid code")
			return
		}
		h.logger.Error("2fa verify", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": token})
}

func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	secret, url, err := h.service.Setup2FA(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("2fa setup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"secret": secret, "otpauth_url": url})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req codeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if detail, ok := h.validate(req); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}
	if err := h.service.Confirm2FA(r.Context(), principal.UserID, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrCodigoInvalido):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid code")
		case errors.Is(err, ErrSetupPendenteAusente):
			httpx.Problem(w, http.StatusConflict, "Conflict", "no pending 2fa setup")
		default:
			h.logger.Error("2fa confirm", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"enabled": true})
}

func (h *Handler) handleDisable(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req codeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if detail, ok := h.validate(req); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}
	if err := h.service.Disable2FA(r.Context(), principal.UserID, req.Code); err != nil {
		if errors.Is(err, ErrCodigoInvalido) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid code")
			return
		}
		h.logger.Error("2fa disable", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"enabled": false})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if detail, ok := h.validate(req); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}
	target := uuid.MustParse(req.UserID)
	if err := h.service.Reset2FA(r.Context(), target); err != nil {
		h.logger.Error("2fa reset", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"enabled": false})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	enabled, err := h.service.Status2FA(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("2fa status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"enabled": enabled})
}

// validate runs struct validation. Field-level detail is surfaced only
// outside production.
func (h *Handler) validate(v any) (string, bool) {
	if err := h.validator.Struct(v); err != nil {
		if h.production {
			return "invalid request", false
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldErrs[0].Error(), false
		}
		return err.Error(), false
	}
	return "", true
}
