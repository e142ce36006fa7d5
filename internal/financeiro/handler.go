package financeiro

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Handler wires billing settings endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	validator  *validator.Validate
	production bool
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, production bool) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), production: production}
}

type multaPayload struct {
	PercentualMulta float64 `json:"percentual_multa" validate:"min=0,max=100"`
	JurosDiario     float64 `json:"juros_diario" validate:"min=0,max=10"`
	DiasCarencia    int     `json:"dias_carencia" validate:"min=0,max=90"`
	Ativo           bool    `json:"ativo"`
}

func (h *Handler) getMulta(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	config, err := h.service.GetMulta(r.Context(), principal)
	if err != nil {
		h.respondError(w, "get configuracao multa", err)
		return
	}
	httpx.JSON(w, http.StatusOK, config)
}

func (h *Handler) updateMulta(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var payload multaPayload
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
	config, err := h.service.UpdateMulta(r.Context(), principal, UpdateMultaInput{
		PercentualMulta: payload.PercentualMulta,
		JurosDiario:     payload.JurosDiario,
		DiasCarencia:    payload.DiasCarencia,
		Ativo:           payload.Ativo,
	})
	if err != nil {
		h.respondError(w, "update configuracao multa", err)
		return
	}
	httpx.JSON(w, http.StatusOK, config)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrInstitutionRequired):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "an institution context is required")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "configuration not found")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
