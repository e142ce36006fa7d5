package encerramento

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Handler wires year-end closure endpoints.
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

type anoPayload struct {
	Ano       int       `json:"ano" validate:"required,min=2000"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

type runPayload struct {
	AnoLetivoID string `json:"ano_letivo_id" validate:"required,uuid"`
	Notes       string `json:"notes"`
}

type checklistPayload struct {
	Status  string `json:"status" validate:"required,oneof=PENDENTE EM_CURSO CONCLUIDO IGNORADO"`
	Comment string `json:"comment"`
}

func (h *Handler) createAno(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var payload anoPayload
	if !h.decode(w, r, &payload) {
		return
	}
	ano, err := h.service.CreateAno(r.Context(), principal, CreateAnoInput{
		Ano:       payload.Ano,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
	})
	if err != nil {
		h.respondError(w, "create ano letivo", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ano)
}

func (h *Handler) listAnos(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	limit, offset := shared.ParseLimitOffset(r.URL.Query())
	anos, err := h.service.ListAnos(r.Context(), principal, limit, offset)
	if err != nil {
		h.respondError(w, "list anos letivos", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": anos})
}

func (h *Handler) showAno(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ano, err := h.service.GetAno(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "get ano letivo", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ano)
}

func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var payload runPayload
	if !h.decode(w, r, &payload) {
		return
	}
	run, err := h.service.StartRun(r.Context(), principal, uuid.MustParse(payload.AnoLetivoID), payload.Notes)
	if err != nil {
		h.respondError(w, "start closure run", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, run)
}

func (h *Handler) showRun(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	run, err := h.service.GetRun(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "get closure run", err)
		return
	}
	httpx.JSON(w, http.StatusOK, run)
}

func (h *Handler) updateChecklist(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid item id")
		return
	}
	var payload checklistPayload
	if !h.decode(w, r, &payload) {
		return
	}
	item, err := h.service.UpdateChecklist(r.Context(), principal, ChecklistUpdateInput{
		ItemID:  itemID,
		Status:  ChecklistStatus(payload.Status),
		Comment: payload.Comment,
	})
	if err != nil {
		h.respondError(w, "update checklist", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) softClose(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ano, err := h.service.SoftClose(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "soft close", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ano)
}

func (h *Handler) hardClose(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ano, err := h.service.HardClose(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "hard close", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ano)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ano, err := h.service.Reopen(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "reopen ano letivo", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ano)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrAnoEncerrado), errors.Is(err, ErrRunAtiva),
		errors.Is(err, ErrChecklistIncompleta), errors.Is(err, ErrAnoOverlap):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrChecklistBloqueada), errors.Is(err, ErrStatusChecklistInvalido):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, shared.ErrTermoNaoAceite):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "termo de responsabilidade pendente")
	case errors.Is(err, shared.ErrInstitutionRequired):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "an institution context is required")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return uuid.Nil, false
	}
	return id, true
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
