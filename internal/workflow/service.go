package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dsicola/dsicola-sub019/internal/observability"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// ErrAcaoNaoPermitida indicates the acting role is outside the action's allow-list.
var ErrAcaoNaoPermitida = errors.New("workflow: acao nao permitida para o papel")

// Store persists workflow state and transition history. Satisfied by
// *Repository; tests substitute an in-memory implementation.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	Registar(ctx context.Context, module string, ref uuid.UUID, scope shared.Scope) error
	Load(ctx context.Context, module string, ref uuid.UUID) (RegistoEstado, error)
	LoadForUpdate(ctx context.Context, tx pgx.Tx, module string, ref uuid.UUID) (RegistoEstado, error)
	UpdateEstado(ctx context.Context, tx pgx.Tx, module string, ref uuid.UUID, estado Estado, anterior *Estado) error
	AppendTransicao(ctx context.Context, tx pgx.Tx, t Transicao) error
	Historico(ctx context.Context, module string, ref uuid.UUID) ([]Transicao, error)
}

// TermChecker verifies the reopen precondition. Satisfied by *shared.TermStore.
type TermChecker interface {
	CheckCurrent(ctx context.Context, userID uuid.UUID, actionType string) error
}

// Service applies workflow transitions to records. It is the single writer
// of registo_estados; resource services call it instead of mutating state.
type Service struct {
	repo    Store
	terms   TermChecker
	audit   *shared.AuditLogger
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Store, terms TermChecker, audit *shared.AuditLogger, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{repo: repo, terms: terms, audit: audit, metrics: metrics, logger: logger}
}

// Registar creates the state row for a freshly created record.
func (s *Service) Registar(ctx context.Context, module string, ref uuid.UUID, scope shared.Scope) error {
	return s.repo.Registar(ctx, module, ref, scope)
}

// Estado returns the current state of a record under the given scope.
// Records of another institution surface as ErrInstitutionMismatch.
func (s *Service) Estado(ctx context.Context, scope shared.Scope, module string, ref uuid.UUID) (RegistoEstado, error) {
	reg, err := s.repo.Load(ctx, module, ref)
	if err != nil {
		return RegistoEstado{}, err
	}
	if !scope.Covers(reg.InstitutionID) {
		return RegistoEstado{}, shared.ErrInstitutionMismatch
	}
	return reg, nil
}

// Historico returns the transition trail of a record under the given scope.
func (s *Service) Historico(ctx context.Context, scope shared.Scope, module string, ref uuid.UUID) ([]Transicao, error) {
	if _, err := s.Estado(ctx, scope, module, ref); err != nil {
		return nil, err
	}
	return s.repo.Historico(ctx, module, ref)
}

// GarantirEditavel fails with ErrRegistroEncerrado when the record is locked.
// Resource services call this before applying any field-level mutation.
func (s *Service) GarantirEditavel(ctx context.Context, scope shared.Scope, module string, ref uuid.UUID) error {
	reg, err := s.Estado(ctx, scope, module, ref)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// No state row yet means the record never entered the workflow.
			return nil
		}
		return err
	}
	if !Editavel(reg.Estado) {
		return ErrRegistroEncerrado
	}
	return nil
}

// Aplicar performs one transition: role gate, row lock, table lookup,
// reopen precondition, state write, history append, audit entry.
func (s *Service) Aplicar(ctx context.Context, principal shared.Principal, module string, ref uuid.UUID, acao Acao, note string) (Estado, error) {
	if !RoleAllowed(acao, principal.Role) {
		return "", ErrAcaoNaoPermitida
	}
	scope, err := principal.Scope()
	if err != nil {
		return "", err
	}

	if acao == AcaoReabrir {
		if err := s.terms.CheckCurrent(ctx, principal.UserID, shared.TermActionReabertura); err != nil {
			return "", err
		}
	}

	var resultado Estado
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		reg, err := s.repo.LoadForUpdate(ctx, tx, module, ref)
		if err != nil {
			return err
		}
		if !scope.Covers(reg.InstitutionID) {
			return shared.ErrInstitutionMismatch
		}

		proximo, err := Proximo(reg.Estado, acao)
		if err != nil {
			return err
		}

		var anterior *Estado
		switch acao {
		case AcaoBloquear:
			// Remember where we came from so REABRIR can return there.
			de := reg.Estado
			anterior = &de
		case AcaoReabrir:
			if reg.EstadoAnterior != nil {
				proximo = *reg.EstadoAnterior
			}
		}

		if err := s.repo.UpdateEstado(ctx, tx, module, ref, proximo, anterior); err != nil {
			return err
		}
		if err := s.repo.AppendTransicao(ctx, tx, Transicao{
			Module:  module,
			RefID:   ref,
			ActorID: principal.UserID,
			De:      reg.Estado,
			Acao:    acao,
			Para:    proximo,
			Note:    note,
			At:      time.Now(),
		}); err != nil {
			return err
		}
		resultado = proximo
		return nil
	})
	if err != nil {
		return "", err
	}

	s.metrics.ObserveTransition(module, string(acao))

	if s.audit != nil {
		if auditErr := s.audit.Record(ctx, shared.AuditLog{
			ActorID:       principal.UserID,
			InstitutionID: principal.InstitutionID,
			Action:        "workflow." + string(acao),
			Entity:        module,
			EntityID:      ref.String(),
			Meta:          map[string]any{"para": string(resultado)},
		}); auditErr != nil && s.logger != nil {
			s.logger.Warn("audit workflow transition", slog.Any("error", auditErr))
		}
	}
	return resultado, nil
}

// Submeter moves a draft into review.
func (s *Service) Submeter(ctx context.Context, p shared.Principal, module string, ref uuid.UUID, note string) (Estado, error) {
	return s.Aplicar(ctx, p, module, ref, AcaoSubmeter, note)
}

// Aprovar approves a record in review.
func (s *Service) Aprovar(ctx context.Context, p shared.Principal, module string, ref uuid.UUID, note string) (Estado, error) {
	return s.Aplicar(ctx, p, module, ref, AcaoAprovar, note)
}

// Rejeitar sends a record in review back to draft.
func (s *Service) Rejeitar(ctx context.Context, p shared.Principal, module string, ref uuid.UUID, note string) (Estado, error) {
	return s.Aplicar(ctx, p, module, ref, AcaoRejeitar, note)
}

// Bloquear locks a record.
func (s *Service) Bloquear(ctx context.Context, p shared.Principal, module string, ref uuid.UUID, note string) (Estado, error) {
	return s.Aplicar(ctx, p, module, ref, AcaoBloquear, note)
}

// Reabrir unlocks a record, returning it to the state held before the lock.
// Requires a current legal-term acceptance by the actor.
func (s *Service) Reabrir(ctx context.Context, p shared.Principal, module string, ref uuid.UUID, note string) (Estado, error) {
	return s.Aplicar(ctx, p, module, ref, AcaoReabrir, note)
}
