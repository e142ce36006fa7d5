package presencas

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/observability"
	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Handler wires attendance endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	validator  *validator.Validate
	metrics    *observability.Metrics
	production bool
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics, production bool) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), metrics: metrics, production: production}
}

type manualPayload struct {
	FuncionarioID string    `json:"funcionario_id" validate:"required,uuid"`
	Tipo          string    `json:"tipo" validate:"required,oneof=ENTRADA SAIDA"`
	RegistadoEm   time.Time `json:"registado_em" validate:"required"`
}

type punchPayload struct {
	FuncionarioID string     `json:"funcionario_id" validate:"required,uuid"`
	Tipo          string     `json:"tipo" validate:"required,oneof=ENTRADA SAIDA"`
	Timestamp     *time.Time `json:"timestamp"`
}

type devicePayload struct {
	Name string `json:"name" validate:"required,min=2"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var payload manualPayload
	if !h.decode(w, r, &payload) {
		return
	}
	presenca, err := h.service.Registar(r.Context(), principal, CreateInput{
		FuncionarioID: uuid.MustParse(payload.FuncionarioID),
		Tipo:          Tipo(payload.Tipo),
		RegistadoEm:   payload.RegistadoEm,
	})
	if err != nil {
		h.respondError(w, "create presenca", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, presenca)
}

// devicePunch ingests a punch from a biometric terminal. The route sits
// behind DeviceAuthenticator.Middleware, not the user auth stack.
func (h *Handler) devicePunch(w http.ResponseWriter, r *http.Request) {
	device, ok := DeviceFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid device token")
		return
	}
	var payload punchPayload
	if !h.decode(w, r, &payload) {
		return
	}
	punch := DevicePunch{
		FuncionarioID: uuid.MustParse(payload.FuncionarioID),
		Tipo:          Tipo(payload.Tipo),
	}
	if payload.Timestamp != nil {
		punch.RegistadoEm = *payload.Timestamp
	}
	presenca, err := h.service.RegistarDispositivo(r.Context(), device, punch)
	if err != nil {
		h.respondError(w, "device punch", err)
		return
	}
	h.metrics.ObserveDevicePunch()
	httpx.JSON(w, http.StatusCreated, presenca)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	limit, offset := shared.ParseLimitOffset(r.URL.Query())
	var funcionarioID *uuid.UUID
	if raw := r.URL.Query().Get("funcionario_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid funcionario_id")
			return
		}
		funcionarioID = &id
	}
	list, err := h.service.List(r.Context(), principal, funcionarioID, limit, offset)
	if err != nil {
		h.respondError(w, "list presencas", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *Handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var payload devicePayload
	if !h.decode(w, r, &payload) {
		return
	}
	device, token, err := h.service.RegisterDevice(r.Context(), principal, payload.Name)
	if err != nil {
		h.respondError(w, "register device", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":    device.ID,
		"name":  device.Name,
		"token": token,
	})
}

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	devices, err := h.service.ListDevices(r.Context(), principal)
	if err != nil {
		h.respondError(w, "list devices", err)
		return
	}
	type deviceView struct {
		ID         uuid.UUID  `json:"id"`
		Name       string     `json:"name"`
		Active     bool       `json:"active"`
		LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	}
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, deviceView{ID: d.ID, Name: d.Name, Active: d.Active, LastSeenAt: d.LastSeenAt})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views})
}

func (h *Handler) revokeDevice(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.RevokeDevice(r.Context(), principal, id); err != nil {
		h.respondError(w, "revoke device", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrPunchDuplicado):
		httpx.Problem(w, http.StatusConflict, "Conflict", "punch already recorded")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		detail := "invalid request"
		// Field-level detail is surfaced only outside production.
		var fieldErrs validator.ValidationErrors
		if !h.production && errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			detail = fieldErrs[0].Error()
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return false
	}
	return true
}
