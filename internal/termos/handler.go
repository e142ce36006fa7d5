// Package termos exposes the legal-term acceptance endpoint that gates
// destructive operations such as reopening a closed year.
package termos

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/rbac"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Handler wires term acceptance endpoints.
type Handler struct {
	logger     *slog.Logger
	store      *shared.TermStore
	validator  *validator.Validate
	production bool
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, store *shared.TermStore, production bool) *Handler {
	return &Handler{logger: logger, store: store, validator: validator.New(), production: production}
}

type acceptPayload struct {
	ActionType string `json:"action_type" validate:"required,oneof=ENCERRAMENTO_ANO REABERTURA RESTAURO_BACKUP"`
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var payload acceptPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		detail := "invalid request"
		// Field-level detail is surfaced only outside production.
		var fieldErrs validator.ValidationErrors
		if !h.production && errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			detail = fieldErrs[0].Error()
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}
	acceptance, err := h.store.Accept(r.Context(), principal.UserID, payload.ActionType)
	if err != nil {
		h.logger.Error("accept term", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"action_type": acceptance.ActionType,
		"accepted_at": acceptance.AcceptedAt,
		"expires_at":  acceptance.ExpiresAt,
	})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	payload := acceptPayload{ActionType: r.URL.Query().Get("action_type")}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "action_type must be a known term action")
		return
	}
	current := true
	if err := h.store.CheckCurrent(r.Context(), principal.UserID, payload.ActionType); err != nil {
		if !errors.Is(err, shared.ErrTermoNaoAceite) {
			h.logger.Error("term status", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		current = false
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"action_type": payload.ActionType,
		"current":     current,
	})
}

// MountRoutes attaches term routes. The roles able to perform the gated
// operations are the ones that can accept the term.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Authorize(shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleDirecao))
		r.Post("/termos/aceitar", h.accept)
		r.Get("/termos/atual", h.status)
	})
}
