package pautas

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

func newBareHandler() *Handler {
	return &Handler{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator: validator.New(),
	}
}

func TestRespondErrorMapping(t *testing.T) {
	h := newBareHandler()

	cases := []struct {
		err  error
		code int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{&workflow.TransicaoError{De: workflow.EstadoEncerrado, Acao: workflow.AcaoAprovar}, http.StatusConflict},
		{workflow.ErrRegistroEncerrado, http.StatusConflict},
		{workflow.ErrAcaoNaoPermitida, http.StatusForbidden},
		{ErrNaoDono, http.StatusForbidden},
		{ErrPautaAprovada, http.StatusForbidden},
		{shared.ErrInstitutionMismatch, http.StatusForbidden},
		{shared.ErrTermoNaoAceite, http.StatusForbidden},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.respondError(rr, "test", tc.err)
		assert.Equal(t, tc.code, rr.Code, "error %v", tc.err)
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	h := newBareHandler()

	decode := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/pautas", strings.NewReader(body))
		rr := httptest.NewRecorder()
		var payload createPayload
		h.decode(rr, req, &payload)
		return rr
	}

	assert.Equal(t, http.StatusBadRequest, decode("{not json").Code)
	assert.Equal(t, http.StatusBadRequest, decode(`{"professor_id":"not-a-uuid","disciplina":"Matemática","turma":"10A","ano_letivo":2026}`).Code)
	assert.Equal(t, http.StatusBadRequest, decode(`{"professor_id":"`+uuid.NewString()+`","turma":"10A","ano_letivo":2026}`).Code)
	assert.Equal(t, http.StatusBadRequest, decode(`{"professor_id":"`+uuid.NewString()+`","disciplina":"Matemática","turma":"10A","ano_letivo":1980}`).Code)
}

func TestDecodeHidesFieldDetailInProduction(t *testing.T) {
	h := newBareHandler()
	h.production = true

	body := `{"professor_id":"not-a-uuid","disciplina":"Matemática","turma":"10A","ano_letivo":2026}`
	req := httptest.NewRequest(http.MethodPost, "/pautas", strings.NewReader(body))
	rr := httptest.NewRecorder()
	var payload createPayload
	h.decode(rr, req, &payload)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request")
	assert.NotContains(t, rr.Body.String(), "ProfessorID")
}

func TestPautaIDRejectsMalformedParam(t *testing.T) {
	h := newBareHandler()

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "nope")
	req := httptest.NewRequest(http.MethodGet, "/pautas/nope", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	_, ok := h.pautaID(rr, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
