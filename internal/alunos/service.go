package alunos

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Service handles student business logic.
type Service struct {
	repo   *Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo *Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create inserts a new student under the principal's institution.
func (s *Service) Create(ctx context.Context, principal shared.Principal, in CreateAlunoInput) (Aluno, error) {
	if err := in.Validate(); err != nil {
		return Aluno{}, err
	}
	scope, err := principal.Scope()
	if err != nil {
		return Aluno{}, err
	}
	aluno, err := s.repo.Insert(ctx, scope, in)
	if err != nil {
		return Aluno{}, err
	}
	s.recordAudit(ctx, principal, "alunos.create", aluno.ID)
	return aluno, nil
}

// Get loads one student visible to the principal.
func (s *Service) Get(ctx context.Context, principal shared.Principal, id uuid.UUID) (Aluno, error) {
	scope, err := principal.Scope()
	if err != nil {
		return Aluno{}, err
	}
	return s.repo.Get(ctx, scope, id)
}

// List returns students visible to the principal.
func (s *Service) List(ctx context.Context, principal shared.Principal, req ListAlunosRequest) ([]Aluno, int, error) {
	scope, err := principal.Scope()
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, scope, req)
}

// Update persists changes to a student.
func (s *Service) Update(ctx context.Context, principal shared.Principal, id uuid.UUID, in UpdateAlunoInput) (Aluno, error) {
	scope, err := principal.Scope()
	if err != nil {
		return Aluno{}, err
	}
	aluno, err := s.repo.Update(ctx, scope, id, in)
	if err != nil {
		return Aluno{}, err
	}
	s.recordAudit(ctx, principal, "alunos.update", aluno.ID)
	return aluno, nil
}

// Delete removes a student.
func (s *Service) Delete(ctx context.Context, principal shared.Principal, id uuid.UUID) error {
	scope, err := principal.Scope()
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return err
	}
	s.recordAudit(ctx, principal, "alunos.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, principal shared.Principal, action string, id uuid.UUID) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:       principal.UserID,
		InstitutionID: principal.InstitutionID,
		Action:        action,
		Entity:        "alunos",
		EntityID:      id.String(),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit aluno", slog.Any("error", err))
	}
}
