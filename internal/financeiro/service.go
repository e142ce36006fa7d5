package financeiro

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Service handles billing settings logic.
type Service struct {
	repo   *Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo *Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// GetMulta returns the caller institution's fee policy, falling back to
// the defaults when none was ever saved.
func (s *Service) GetMulta(ctx context.Context, principal shared.Principal) (ConfiguracaoMulta, error) {
	scope, err := principal.Scope()
	if err != nil {
		return ConfiguracaoMulta{}, err
	}
	if scope.AllInstitutions() {
		// SUPER_ADMIN without an institution context has no single policy
		// to show; require an institution-bound principal here.
		return ConfiguracaoMulta{}, shared.ErrInstitutionRequired
	}
	config, err := s.repo.GetMulta(ctx, scope.InstitutionID())
	if errors.Is(err, shared.ErrNotFound) {
		return DefaultConfiguracaoMulta(scope.InstitutionID()), nil
	}
	return config, err
}

// UpdateMulta saves the fee policy for the caller's institution.
func (s *Service) UpdateMulta(ctx context.Context, principal shared.Principal, in UpdateMultaInput) (ConfiguracaoMulta, error) {
	if err := in.Validate(); err != nil {
		return ConfiguracaoMulta{}, err
	}
	scope, err := principal.Scope()
	if err != nil {
		return ConfiguracaoMulta{}, err
	}
	if scope.AllInstitutions() {
		return ConfiguracaoMulta{}, shared.ErrInstitutionRequired
	}
	actorID := principal.UserID
	config := ConfiguracaoMulta{
		InstitutionID:   scope.InstitutionID(),
		PercentualMulta: in.PercentualMulta,
		JurosDiario:     in.JurosDiario,
		DiasCarencia:    in.DiasCarencia,
		Ativo:           in.Ativo,
		UpdatedBy:       &actorID,
	}
	if err := s.repo.UpsertMulta(ctx, config); err != nil {
		return ConfiguracaoMulta{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:       principal.UserID,
			InstitutionID: principal.InstitutionID,
			Action:        "financeiro.configuracao_multa.update",
			Entity:        "configuracao_multa",
			EntityID:      scope.InstitutionID().String(),
		}); err != nil && s.logger != nil {
			s.logger.Warn("audit configuracao multa", slog.Any("error", err))
		}
	}
	return s.repo.GetMulta(ctx, scope.InstitutionID())
}
