package alunos

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

// Handler wires student endpoints.
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

type alunoPayload struct {
	Nome            string `json:"nome" validate:"required,min=2"`
	Email           string `json:"email" validate:"omitempty,email"`
	NumeroMatricula string `json:"numero_matricula" validate:"required"`
	DataNascimento  string `json:"data_nascimento" validate:"omitempty,datetime=2006-01-02"`
	Ativo           *bool  `json:"ativo"`
}

type alunoResponse struct {
	ID              uuid.UUID  `json:"id"`
	InstitutionID   uuid.UUID  `json:"institution_id"`
	Nome            string     `json:"nome"`
	Email           string     `json:"email"`
	NumeroMatricula string     `json:"numero_matricula"`
	DataNascimento  *time.Time `json:"data_nascimento,omitempty"`
	Ativo           bool       `json:"ativo"`
}

func toResponse(a Aluno) alunoResponse {
	return alunoResponse{
		ID:              a.ID,
		InstitutionID:   a.InstitutionID,
		Nome:            a.Nome,
		Email:           a.Email,
		NumeroMatricula: a.NumeroMatricula,
		DataNascimento:  a.DataNascimento,
		Ativo:           a.Ativo,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	limit, offset := shared.ParseLimitOffset(r.URL.Query())
	list, total, err := h.service.List(r.Context(), principal, ListAlunosRequest{
		Search: r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("list alunos", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	items := make([]alunoResponse, 0, len(list))
	for _, a := range list {
		items = append(items, toResponse(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	aluno, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "aluno not found")
			return
		}
		h.logger.Error("get aluno", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(aluno))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	in := CreateAlunoInput{
		Nome:            payload.Nome,
		Email:           payload.Email,
		NumeroMatricula: payload.NumeroMatricula,
		DataNascimento:  parseDate(payload.DataNascimento),
	}
	aluno, err := h.service.Create(r.Context(), principal, in)
	if err != nil {
		if errors.Is(err, ErrMatriculaDuplicada) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		h.logger.Error("create aluno", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(aluno))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	ativo := true
	if payload.Ativo != nil {
		ativo = *payload.Ativo
	}
	aluno, err := h.service.Update(r.Context(), principal, id, UpdateAlunoInput{
		Nome:           payload.Nome,
		Email:          payload.Email,
		DataNascimento: parseDate(payload.DataNascimento),
		Ativo:          ativo,
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "aluno not found")
			return
		}
		h.logger.Error("update aluno", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(aluno))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "aluno not found")
			return
		}
		h.logger.Error("delete aluno", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (alunoPayload, bool) {
	var payload alunoPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return payload, false
	}
	if err := h.validator.Struct(payload); err != nil {
		detail := "invalid request"
		// Field-level detail is surfaced only outside production.
		var fieldErrs validator.ValidationErrors
		if !h.production && errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			detail = fieldErrs[0].Error()
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return payload, false
	}
	return payload, true
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
