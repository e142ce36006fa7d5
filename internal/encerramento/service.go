package encerramento

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dsicola/dsicola-sub019/internal/pautas"
	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

// Service orchestrates school year lifecycle and closure runs.
type Service struct {
	repo     *Repository
	workflow *workflow.Service
	terms    *shared.TermStore
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo *Repository, wf *workflow.Service, terms *shared.TermStore, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, workflow: wf, terms: terms, audit: audit, logger: logger}
}

// CreateAno inserts a new school year after validating overlap.
func (s *Service) CreateAno(ctx context.Context, principal shared.Principal, in CreateAnoInput) (AnoLetivo, error) {
	if err := in.Validate(); err != nil {
		return AnoLetivo{}, err
	}
	scope, err := principal.Scope()
	if err != nil {
		return AnoLetivo{}, err
	}
	if scope.AllInstitutions() {
		return AnoLetivo{}, shared.ErrInstitutionRequired
	}
	conflict, err := s.repo.AnoRangeConflict(ctx, scope.InstitutionID(), in.StartDate, in.EndDate)
	if err != nil {
		return AnoLetivo{}, err
	}
	if conflict {
		return AnoLetivo{}, ErrAnoOverlap
	}
	ano, err := s.repo.InsertAno(ctx, scope.InstitutionID(), in)
	if err != nil {
		return AnoLetivo{}, err
	}
	s.recordAudit(ctx, principal, "encerramento.ano.create", ano.ID)
	return ano, nil
}

// ListAnos returns school years visible to the principal.
func (s *Service) ListAnos(ctx context.Context, principal shared.Principal, limit, offset int) ([]AnoLetivo, error) {
	scope, err := principal.Scope()
	if err != nil {
		return nil, err
	}
	return s.repo.ListAnos(ctx, scope, limit, offset)
}

// GetAno returns one school year.
func (s *Service) GetAno(ctx context.Context, principal shared.Principal, id uuid.UUID) (AnoLetivo, error) {
	scope, err := principal.Scope()
	if err != nil {
		return AnoLetivo{}, err
	}
	return s.repo.LoadAno(ctx, scope, id)
}

// StartRun opens a closure run for a year and seeds the checklist.
func (s *Service) StartRun(ctx context.Context, principal shared.Principal, anoID uuid.UUID, notes string) (Run, error) {
	scope, err := principal.Scope()
	if err != nil {
		return Run{}, err
	}
	var run Run
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ano, err := s.repo.LoadAnoForUpdate(ctx, tx, anoID)
		if err != nil {
			return err
		}
		if !scope.Covers(ano.InstitutionID) {
			return shared.ErrNotFound
		}
		if ano.Status == AnoStatusEncerrado {
			return ErrAnoEncerrado
		}
		active, err := s.repo.AnoHasActiveRun(ctx, tx, ano.ID)
		if err != nil {
			return err
		}
		if active {
			return ErrRunAtiva
		}
		run, err = s.repo.InsertRun(ctx, tx, ano.InstitutionID, ano.ID, principal.UserID, notes)
		if err != nil {
			return err
		}
		items, err := s.repo.InsertChecklistItems(ctx, tx, run.ID, DefaultChecklist)
		if err != nil {
			return err
		}
		run.Checklist = items
		return nil
	})
	if err != nil {
		return Run{}, err
	}
	s.recordAudit(ctx, principal, "encerramento.run.start", run.ID)
	return run, nil
}

// GetRun returns a run with its checklist.
func (s *Service) GetRun(ctx context.Context, principal shared.Principal, id uuid.UUID) (Run, error) {
	scope, err := principal.Scope()
	if err != nil {
		return Run{}, err
	}
	return s.repo.LoadRun(ctx, scope, id)
}

// UpdateChecklist applies one checklist change, completing the run when
// every item is resolved.
func (s *Service) UpdateChecklist(ctx context.Context, principal shared.Principal, in ChecklistUpdateInput) (ChecklistItem, error) {
	switch in.Status {
	case ChecklistStatusPendente, ChecklistStatusEmCurso, ChecklistStatusConcluido, ChecklistStatusIgnorado:
	default:
		return ChecklistItem{}, ErrStatusChecklistInvalido
	}
	scope, err := principal.Scope()
	if err != nil {
		return ChecklistItem{}, err
	}
	var item ChecklistItem
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		runID, err := s.repo.LockChecklistItemRun(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		run, err := s.repo.LoadRunForUpdate(ctx, tx, runID)
		if err != nil {
			return err
		}
		if !scope.Covers(run.InstitutionID) {
			return shared.ErrNotFound
		}
		if run.Status == RunStatusCancelado {
			return ErrChecklistBloqueada
		}
		item, err = s.repo.UpdateChecklistStatus(ctx, tx, in)
		if err != nil {
			return err
		}
		if run.Status != RunStatusConcluido {
			done, err := s.repo.ChecklistDone(ctx, tx, run.ID)
			if err != nil {
				return err
			}
			if done {
				return s.repo.UpdateRunStatus(ctx, tx, run.ID, RunStatusConcluido)
			}
		}
		return nil
	})
	if err != nil {
		return ChecklistItem{}, err
	}
	return item, nil
}

// SoftClose marks the year as partially closed. Grade sheets stay editable.
func (s *Service) SoftClose(ctx context.Context, principal shared.Principal, runID uuid.UUID) (AnoLetivo, error) {
	scope, err := principal.Scope()
	if err != nil {
		return AnoLetivo{}, err
	}
	var anoID uuid.UUID
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		run, err := s.repo.LoadRunForUpdate(ctx, tx, runID)
		if err != nil {
			return err
		}
		if !scope.Covers(run.InstitutionID) {
			return shared.ErrNotFound
		}
		if run.Status == RunStatusCancelado {
			return ErrChecklistBloqueada
		}
		anoID = run.AnoLetivoID
		return s.repo.UpdateAnoStatus(ctx, tx, run.AnoLetivoID, AnoStatusParcial, principal.UserID)
	})
	if err != nil {
		return AnoLetivo{}, err
	}
	s.recordAudit(ctx, principal, "encerramento.soft_close", anoID)
	return s.repo.LoadAno(ctx, scope, anoID)
}

// HardClose locks the year. Requires a complete checklist and a current
// legal-term acceptance, then locks every grade sheet of the year.
func (s *Service) HardClose(ctx context.Context, principal shared.Principal, runID uuid.UUID) (AnoLetivo, error) {
	if err := s.terms.CheckCurrent(ctx, principal.UserID, shared.TermActionEncerramento); err != nil {
		return AnoLetivo{}, err
	}
	scope, err := principal.Scope()
	if err != nil {
		return AnoLetivo{}, err
	}
	var ano AnoLetivo
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		run, err := s.repo.LoadRunForUpdate(ctx, tx, runID)
		if err != nil {
			return err
		}
		if !scope.Covers(run.InstitutionID) {
			return shared.ErrNotFound
		}
		if run.Status == RunStatusCancelado {
			return ErrChecklistBloqueada
		}
		done, err := s.repo.ChecklistDone(ctx, tx, run.ID)
		if err != nil {
			return err
		}
		if !done {
			return ErrChecklistIncompleta
		}
		locked, err := s.repo.LoadAnoForUpdate(ctx, tx, run.AnoLetivoID)
		if err != nil {
			return err
		}
		if locked.Status == AnoStatusEncerrado {
			return ErrAnoEncerrado
		}
		ano = locked
		if err := s.repo.UpdateAnoStatus(ctx, tx, run.AnoLetivoID, AnoStatusEncerrado, principal.UserID); err != nil {
			return err
		}
		return s.repo.UpdateRunStatus(ctx, tx, run.ID, RunStatusConcluido)
	})
	if err != nil {
		return AnoLetivo{}, err
	}

	s.lockPautas(ctx, principal, ano)
	s.recordAudit(ctx, principal, "encerramento.hard_close", ano.ID)
	return s.repo.LoadAno(ctx, scope, ano.ID)
}

// Reopen returns a closed year to ABERTO. Gated by the reopening term.
// Locked grade sheets stay locked; they are reopened individually.
func (s *Service) Reopen(ctx context.Context, principal shared.Principal, anoID uuid.UUID) (AnoLetivo, error) {
	if err := s.terms.CheckCurrent(ctx, principal.UserID, shared.TermActionReabertura); err != nil {
		return AnoLetivo{}, err
	}
	scope, err := principal.Scope()
	if err != nil {
		return AnoLetivo{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ano, err := s.repo.LoadAnoForUpdate(ctx, tx, anoID)
		if err != nil {
			return err
		}
		if !scope.Covers(ano.InstitutionID) {
			return shared.ErrNotFound
		}
		if ano.Status == AnoStatusAberto {
			return nil
		}
		return s.repo.UpdateAnoStatus(ctx, tx, ano.ID, AnoStatusAberto, principal.UserID)
	})
	if err != nil {
		return AnoLetivo{}, err
	}
	s.recordAudit(ctx, principal, "encerramento.reopen", anoID)
	return s.repo.LoadAno(ctx, scope, anoID)
}

// lockPautas walks the year's grade sheets and locks each through the
// workflow. Failures are logged and skipped so one bad sheet does not
// abort the closure; it can be locked again by hand.
func (s *Service) lockPautas(ctx context.Context, principal shared.Principal, ano AnoLetivo) {
	ids, err := s.repo.PautaIDsForAno(ctx, ano.InstitutionID, ano.Ano)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("list pautas for closure", slog.Any("error", err))
		}
		return
	}
	for _, id := range ids {
		if _, err := s.workflow.Bloquear(ctx, principal, pautas.Module, id, "encerramento do ano letivo"); err != nil {
			if errors.Is(err, workflow.ErrTransicaoInvalida) {
				// Already locked or never registered; nothing to do.
				continue
			}
			if s.logger != nil {
				s.logger.Warn("lock pauta on closure",
					slog.String("pauta", id.String()), slog.Any("error", err))
			}
		}
	}
}

func (s *Service) recordAudit(ctx context.Context, principal shared.Principal, action string, id uuid.UUID) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:       principal.UserID,
		InstitutionID: principal.InstitutionID,
		Action:        action,
		Entity:        "encerramento",
		EntityID:      id.String(),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit encerramento", slog.Any("error", err))
	}
}
