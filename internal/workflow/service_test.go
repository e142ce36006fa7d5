package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/dsicola-sub019/internal/observability"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

type stubStore struct {
	reg      RegistoEstado
	loadErr  error
	appended []Transicao
	updates  []Estado
}

func (s *stubStore) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (s *stubStore) Registar(ctx context.Context, module string, ref uuid.UUID, scope shared.Scope) error {
	return nil
}

func (s *stubStore) Load(ctx context.Context, module string, ref uuid.UUID) (RegistoEstado, error) {
	return s.reg, s.loadErr
}

func (s *stubStore) LoadForUpdate(ctx context.Context, tx pgx.Tx, module string, ref uuid.UUID) (RegistoEstado, error) {
	return s.reg, s.loadErr
}

func (s *stubStore) UpdateEstado(ctx context.Context, tx pgx.Tx, module string, ref uuid.UUID, estado Estado, anterior *Estado) error {
	s.updates = append(s.updates, estado)
	s.reg.Estado = estado
	s.reg.EstadoAnterior = anterior
	return nil
}

func (s *stubStore) AppendTransicao(ctx context.Context, tx pgx.Tx, t Transicao) error {
	s.appended = append(s.appended, t)
	return nil
}

func (s *stubStore) Historico(ctx context.Context, module string, ref uuid.UUID) ([]Transicao, error) {
	return s.appended, nil
}

type stubTerms struct {
	err    error
	checks int
}

func (t *stubTerms) CheckCurrent(ctx context.Context, userID uuid.UUID, actionType string) error {
	t.checks++
	return t.err
}

func adminPrincipal(inst uuid.UUID) shared.Principal {
	return shared.Principal{UserID: uuid.New(), Role: shared.RoleAdmin, InstitutionID: &inst}
}

func newTestService(store *stubStore, terms *stubTerms) *Service {
	return NewService(store, terms, nil, nil, nil)
}

func TestAplicarStampsTransitionTime(t *testing.T) {
	inst := uuid.New()
	store := &stubStore{reg: RegistoEstado{Module: "pautas", RefID: uuid.New(), InstitutionID: inst, Estado: EstadoEmRevisao}}
	svc := newTestService(store, &stubTerms{})

	estado, err := svc.Aprovar(context.Background(), adminPrincipal(inst), "pautas", store.reg.RefID, "")
	require.NoError(t, err)
	assert.Equal(t, EstadoAprovado, estado)

	require.Len(t, store.appended, 1)
	appended := store.appended[0]
	assert.False(t, appended.At.IsZero(), "history rows must carry the transition time")
	assert.WithinDuration(t, time.Now(), appended.At, time.Minute)
	assert.Equal(t, EstadoEmRevisao, appended.De)
	assert.Equal(t, EstadoAprovado, appended.Para)
}

func TestBloquearRemembersPriorState(t *testing.T) {
	inst := uuid.New()
	store := &stubStore{reg: RegistoEstado{Module: "pautas", RefID: uuid.New(), InstitutionID: inst, Estado: EstadoEmRevisao}}
	svc := newTestService(store, &stubTerms{})

	estado, err := svc.Bloquear(context.Background(), adminPrincipal(inst), "pautas", store.reg.RefID, "fecho")
	require.NoError(t, err)
	assert.Equal(t, EstadoEncerrado, estado)
	require.NotNil(t, store.reg.EstadoAnterior)
	assert.Equal(t, EstadoEmRevisao, *store.reg.EstadoAnterior)
}

func TestReabrirRestoresPriorState(t *testing.T) {
	inst := uuid.New()
	anterior := EstadoEmRevisao
	store := &stubStore{reg: RegistoEstado{
		Module: "pautas", RefID: uuid.New(), InstitutionID: inst,
		Estado: EstadoEncerrado, EstadoAnterior: &anterior,
	}}
	svc := newTestService(store, &stubTerms{})

	estado, err := svc.Reabrir(context.Background(), adminPrincipal(inst), "pautas", store.reg.RefID, "")
	require.NoError(t, err)
	assert.Equal(t, EstadoEmRevisao, estado, "reopen returns to the state held before the lock")
	assert.Equal(t, []Estado{EstadoEmRevisao}, store.updates)
}

func TestReabrirFallsBackToAprovado(t *testing.T) {
	inst := uuid.New()
	store := &stubStore{reg: RegistoEstado{
		Module: "pautas", RefID: uuid.New(), InstitutionID: inst, Estado: EstadoEncerrado,
	}}
	svc := newTestService(store, &stubTerms{})

	estado, err := svc.Reabrir(context.Background(), adminPrincipal(inst), "pautas", store.reg.RefID, "")
	require.NoError(t, err)
	assert.Equal(t, EstadoAprovado, estado, "rows without a recorded prior state reopen as APROVADO")
}

func TestReabrirRequiresTermAcceptance(t *testing.T) {
	inst := uuid.New()
	store := &stubStore{reg: RegistoEstado{
		Module: "pautas", RefID: uuid.New(), InstitutionID: inst, Estado: EstadoEncerrado,
	}}
	terms := &stubTerms{err: shared.ErrTermoNaoAceite}
	svc := newTestService(store, terms)

	_, err := svc.Reabrir(context.Background(), adminPrincipal(inst), "pautas", store.reg.RefID, "")
	assert.ErrorIs(t, err, shared.ErrTermoNaoAceite)
	assert.Equal(t, 1, terms.checks)
	assert.Empty(t, store.appended, "no transition may be written when the term gate fails")
	assert.Empty(t, store.updates)
}

func TestAplicarOtherActionsSkipTermCheck(t *testing.T) {
	inst := uuid.New()
	store := &stubStore{reg: RegistoEstado{Module: "pautas", RefID: uuid.New(), InstitutionID: inst, Estado: EstadoRascunho}}
	terms := &stubTerms{err: shared.ErrTermoNaoAceite}
	svc := newTestService(store, terms)

	_, err := svc.Submeter(context.Background(), adminPrincipal(inst), "pautas", store.reg.RefID, "")
	require.NoError(t, err)
	assert.Zero(t, terms.checks)
}

func TestEstadoOutsideScope(t *testing.T) {
	store := &stubStore{reg: RegistoEstado{
		Module: "pautas", RefID: uuid.New(), InstitutionID: uuid.New(), Estado: EstadoAprovado,
	}}
	svc := newTestService(store, &stubTerms{})

	other := adminPrincipal(uuid.New())
	scope, err := other.Scope()
	require.NoError(t, err)

	_, err = svc.Estado(context.Background(), scope, "pautas", store.reg.RefID)
	assert.ErrorIs(t, err, shared.ErrInstitutionMismatch)

	_, err = svc.Aprovar(context.Background(), other, "pautas", store.reg.RefID, "")
	assert.ErrorIs(t, err, shared.ErrInstitutionMismatch)
	assert.Empty(t, store.appended)
}

func TestAplicarCountsTransitionMetric(t *testing.T) {
	inst := uuid.New()
	store := &stubStore{reg: RegistoEstado{Module: "pautas", RefID: uuid.New(), InstitutionID: inst, Estado: EstadoEmRevisao}}
	metrics := observability.NewMetrics()
	svc := NewService(store, &stubTerms{}, nil, metrics, nil)

	_, err := svc.Aprovar(context.Background(), adminPrincipal(inst), "pautas", store.reg.RefID, "")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `dsicola_workflow_transitions_total{acao="APROVAR",module="pautas"} 1`) {
		t.Fatalf("expected transition counter, got: %s", rr.Body.String())
	}
}
