package pautas

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/professores"
	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

// Handler wires grade sheet endpoints.
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

type createPayload struct {
	ProfessorID string `json:"professor_id" validate:"required,uuid"`
	Disciplina  string `json:"disciplina" validate:"required"`
	Turma       string `json:"turma" validate:"required"`
	AnoLetivo   int    `json:"ano_letivo" validate:"required,min=2000"`
}

type notasPayload struct {
	Notas []notaPayload `json:"notas" validate:"required,dive"`
}

type notaPayload struct {
	AlunoID string  `json:"aluno_id" validate:"required,uuid"`
	Valor   float64 `json:"valor" validate:"min=0,max=20"`
}

type transitionPayload struct {
	Note string `json:"note"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	limit, offset := shared.ParseLimitOffset(r.URL.Query())
	pautas, err := h.service.List(r.Context(), principal, ownProfessor(r), limit, offset)
	if err != nil {
		h.respondError(w, "list pautas", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": pautas})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pautaID(w, r)
	if !ok {
		return
	}
	pauta, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "get pauta", err)
		return
	}
	httpx.JSON(w, http.StatusOK, pauta)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var payload createPayload
	if !h.decode(w, r, &payload) {
		return
	}
	pauta, err := h.service.Create(r.Context(), principal, CreatePautaInput{
		ProfessorID: uuid.MustParse(payload.ProfessorID),
		Disciplina:  payload.Disciplina,
		Turma:       payload.Turma,
		AnoLetivo:   payload.AnoLetivo,
	})
	if err != nil {
		h.respondError(w, "create pauta", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pauta)
}

func (h *Handler) updateNotas(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pautaID(w, r)
	if !ok {
		return
	}
	var payload notasPayload
	if !h.decode(w, r, &payload) {
		return
	}
	notas := make([]NotaInput, 0, len(payload.Notas))
	for _, n := range payload.Notas {
		notas = append(notas, NotaInput{AlunoID: uuid.MustParse(n.AlunoID), Valor: n.Valor})
	}
	pauta, err := h.service.AtualizarNotas(r.Context(), principal, ownProfessor(r), id, notas)
	if err != nil {
		h.respondError(w, "update notas", err)
		return
	}
	httpx.JSON(w, http.StatusOK, pauta)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pautaID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.respondError(w, "delete pauta", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) transition(action workflow.Acao) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := shared.PrincipalFromContext(r.Context())
		id, ok := h.pautaID(w, r)
		if !ok {
			return
		}
		var payload transitionPayload
		// Body is optional on transitions.
		_ = httpx.DecodeJSON(r, &payload)

		var estado workflow.Estado
		var err error
		switch action {
		case workflow.AcaoSubmeter:
			estado, err = h.service.Submeter(r.Context(), principal, ownProfessor(r), id, payload.Note)
		case workflow.AcaoAprovar:
			estado, err = h.service.Aprovar(r.Context(), principal, id, payload.Note)
		case workflow.AcaoRejeitar:
			estado, err = h.service.Rejeitar(r.Context(), principal, id, payload.Note)
		case workflow.AcaoBloquear:
			estado, err = h.service.Bloquear(r.Context(), principal, id, payload.Note)
		case workflow.AcaoReabrir:
			estado, err = h.service.Reabrir(r.Context(), principal, id, payload.Note)
		}
		if err != nil {
			h.respondError(w, "transition pauta", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"estado": estado})
	}
}

func (h *Handler) historico(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.pautaID(w, r)
	if !ok {
		return
	}
	trail, err := h.service.Historico(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "pauta historico", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": trail})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "pauta not found")
	case errors.Is(err, workflow.ErrTransicaoInvalida):
		httpx.Problem(w, http.StatusConflict, "Illegal State Transition", err.Error())
	case errors.Is(err, workflow.ErrRegistroEncerrado):
		httpx.Problem(w, http.StatusConflict, "Illegal State Transition", "registro encerrado; reabra antes de alterar")
	case errors.Is(err, workflow.ErrAcaoNaoPermitida), errors.Is(err, ErrNaoDono), errors.Is(err, ErrPautaAprovada):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrInstitutionMismatch):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "pauta belongs to another institution")
	case errors.Is(err, shared.ErrTermoNaoAceite):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "termo de responsabilidade pendente")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) pautaID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

func ownProfessor(r *http.Request) *uuid.UUID {
	if professor, ok := professores.FromContext(r.Context()); ok {
		id := professor.ID
		return &id
	}
	return nil
}
