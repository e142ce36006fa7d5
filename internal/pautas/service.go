package pautas

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

// Service handles grade sheet business logic. All state transitions go
// through the workflow service; field mutation is refused once a sheet is
// ENCERRADO.
type Service struct {
	repo     *Repository
	workflow *workflow.Service
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo *Repository, wf *workflow.Service, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, workflow: wf, audit: audit, logger: logger}
}

// Create inserts a sheet and registers it in the workflow as RASCUNHO.
func (s *Service) Create(ctx context.Context, principal shared.Principal, in CreatePautaInput) (Pauta, error) {
	if err := in.Validate(); err != nil {
		return Pauta{}, err
	}
	scope, err := principal.Scope()
	if err != nil {
		return Pauta{}, err
	}
	pauta, err := s.repo.Insert(ctx, scope, in)
	if err != nil {
		return Pauta{}, err
	}
	if err := s.workflow.Registar(ctx, Module, pauta.ID, scope); err != nil {
		return Pauta{}, err
	}
	pauta.Estado = workflow.EstadoRascunho
	return pauta, nil
}

// Get loads one sheet visible to the principal.
func (s *Service) Get(ctx context.Context, principal shared.Principal, id uuid.UUID) (Pauta, error) {
	scope, err := principal.Scope()
	if err != nil {
		return Pauta{}, err
	}
	return s.repo.Get(ctx, scope, id)
}

// List returns sheets visible to the principal. ownProfessorID restricts the
// listing when the caller is a resolved professor.
func (s *Service) List(ctx context.Context, principal shared.Principal, ownProfessorID *uuid.UUID, limit, offset int) ([]Pauta, error) {
	scope, err := principal.Scope()
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, scope, ownProfessorID, limit, offset)
}

// AtualizarNotas replaces the grade lines of a sheet. Refused while the
// sheet is ENCERRADO or, for non-approver roles, once it is APROVADO;
// professors may only touch their own sheets.
func (s *Service) AtualizarNotas(ctx context.Context, principal shared.Principal, ownProfessorID *uuid.UUID, id uuid.UUID, notas []NotaInput) (Pauta, error) {
	for _, nota := range notas {
		if err := nota.Validate(); err != nil {
			return Pauta{}, err
		}
	}
	scope, err := principal.Scope()
	if err != nil {
		return Pauta{}, err
	}
	pauta, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return Pauta{}, err
	}
	if principal.Role == shared.RoleProfessor {
		if ownProfessorID == nil || pauta.ProfessorID != *ownProfessorID {
			return Pauta{}, ErrNaoDono
		}
	}
	if err := s.workflow.GarantirEditavel(ctx, scope, Module, id); err != nil {
		return Pauta{}, err
	}
	if !PodeAtualizarNotas(pauta.Estado, principal.Role) {
		return Pauta{}, ErrPautaAprovada
	}
	if err := s.repo.ReplaceNotas(ctx, id, notas); err != nil {
		return Pauta{}, err
	}
	s.recordAudit(ctx, principal, "pautas.update_notas", id)
	return s.repo.Get(ctx, scope, id)
}

// Delete removes a sheet. Refused while ENCERRADO.
func (s *Service) Delete(ctx context.Context, principal shared.Principal, id uuid.UUID) error {
	scope, err := principal.Scope()
	if err != nil {
		return err
	}
	if err := s.workflow.GarantirEditavel(ctx, scope, Module, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return err
	}
	s.recordAudit(ctx, principal, "pautas.delete", id)
	return nil
}

// Submeter moves the sheet into review. Professors only for their own sheet.
func (s *Service) Submeter(ctx context.Context, principal shared.Principal, ownProfessorID *uuid.UUID, id uuid.UUID, note string) (workflow.Estado, error) {
	if principal.Role == shared.RoleProfessor {
		scope, err := principal.Scope()
		if err != nil {
			return "", err
		}
		pauta, err := s.repo.Get(ctx, scope, id)
		if err != nil {
			return "", err
		}
		if ownProfessorID == nil || pauta.ProfessorID != *ownProfessorID {
			return "", ErrNaoDono
		}
	}
	return s.workflow.Submeter(ctx, principal, Module, id, note)
}

// Aprovar approves a sheet in review.
func (s *Service) Aprovar(ctx context.Context, principal shared.Principal, id uuid.UUID, note string) (workflow.Estado, error) {
	return s.workflow.Aprovar(ctx, principal, Module, id, note)
}

// Rejeitar returns a sheet in review to draft.
func (s *Service) Rejeitar(ctx context.Context, principal shared.Principal, id uuid.UUID, note string) (workflow.Estado, error) {
	return s.workflow.Rejeitar(ctx, principal, Module, id, note)
}

// Bloquear locks a sheet.
func (s *Service) Bloquear(ctx context.Context, principal shared.Principal, id uuid.UUID, note string) (workflow.Estado, error) {
	return s.workflow.Bloquear(ctx, principal, Module, id, note)
}

// Reabrir unlocks a sheet after the actor accepted the liability term.
func (s *Service) Reabrir(ctx context.Context, principal shared.Principal, id uuid.UUID, note string) (workflow.Estado, error) {
	return s.workflow.Reabrir(ctx, principal, Module, id, note)
}

// Historico returns the sheet's transition trail.
func (s *Service) Historico(ctx context.Context, principal shared.Principal, id uuid.UUID) ([]workflow.Transicao, error) {
	scope, err := principal.Scope()
	if err != nil {
		return nil, err
	}
	return s.workflow.Historico(ctx, scope, Module, id)
}

func (s *Service) recordAudit(ctx context.Context, principal shared.Principal, action string, id uuid.UUID) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:       principal.UserID,
		InstitutionID: principal.InstitutionID,
		Action:        action,
		Entity:        Module,
		EntityID:      id.String(),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit pauta", slog.Any("error", err))
	}
}
