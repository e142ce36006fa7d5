package usuarios

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dsicola/dsicola-sub019/internal/auth"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Service handles account administration logic.
type Service struct {
	repo   *Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo *Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ErrRoleNaoAtribuivel blocks role grants above the actor's reach.
var ErrRoleNaoAtribuivel = errors.New("usuarios: role cannot be assigned by this account")

// Create registers an account. Only SUPER_ADMIN can mint other
// SUPER_ADMIN accounts or create outside their own institution.
func (s *Service) Create(ctx context.Context, principal shared.Principal, in CreateInput) (auth.User, error) {
	if err := in.Validate(); err != nil {
		return auth.User{}, err
	}
	if err := s.checkAssignable(principal, in.Role); err != nil {
		return auth.User{}, err
	}
	if principal.Role != shared.RoleSuperAdmin {
		scope, err := principal.Scope()
		if err != nil {
			return auth.User{}, err
		}
		institution := scope.InstitutionID()
		in.InstitutionID = &institution
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.User{}, err
	}
	user, err := s.repo.Insert(ctx, in, string(hash))
	if err != nil {
		return auth.User{}, err
	}
	s.recordAudit(ctx, principal, "usuarios.create", user.ID)
	return user, nil
}

// Get returns one account visible to the principal.
func (s *Service) Get(ctx context.Context, principal shared.Principal, id uuid.UUID) (auth.User, error) {
	scope, err := principal.Scope()
	if err != nil {
		return auth.User{}, err
	}
	return s.repo.Get(ctx, scope, id)
}

// List returns accounts visible to the principal.
func (s *Service) List(ctx context.Context, principal shared.Principal, role *shared.Role, limit, offset int) ([]auth.User, error) {
	scope, err := principal.Scope()
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, scope, role, limit, offset)
}

// Update changes account fields. Deactivating or demoting the last
// active admin of an institution is refused.
func (s *Service) Update(ctx context.Context, principal shared.Principal, id uuid.UUID, in UpdateInput) (auth.User, error) {
	scope, err := principal.Scope()
	if err != nil {
		return auth.User{}, err
	}
	if in.Role != nil {
		if _, err := shared.ParseRole(string(*in.Role)); err != nil {
			return auth.User{}, err
		}
		if err := s.checkAssignable(principal, *in.Role); err != nil {
			return auth.User{}, err
		}
	}
	current, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return auth.User{}, err
	}
	losesAdmin := current.Role == shared.RoleAdmin && current.IsActive &&
		((in.IsActive != nil && !*in.IsActive) || (in.Role != nil && *in.Role != shared.RoleAdmin))
	if losesAdmin && current.InstitutionID != nil {
		admins, err := s.repo.CountActiveAdmins(ctx, *current.InstitutionID)
		if err != nil {
			return auth.User{}, err
		}
		if admins <= 1 {
			return auth.User{}, ErrUltimoAdmin
		}
	}
	user, err := s.repo.Update(ctx, scope, id, in)
	if err != nil {
		return auth.User{}, err
	}
	s.recordAudit(ctx, principal, "usuarios.update", id)
	return user, nil
}

// ResetPassword sets a new password on the account.
func (s *Service) ResetPassword(ctx context.Context, principal shared.Principal, id uuid.UUID, password string) error {
	if len(password) < 8 {
		return errors.New("usuarios: password must have at least 8 characters")
	}
	scope, err := principal.Scope()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.SetPassword(ctx, scope, id, string(hash)); err != nil {
		return err
	}
	s.recordAudit(ctx, principal, "usuarios.reset_password", id)
	return nil
}

func (s *Service) checkAssignable(principal shared.Principal, role shared.Role) error {
	if role == shared.RoleSuperAdmin && principal.Role != shared.RoleSuperAdmin {
		return ErrRoleNaoAtribuivel
	}
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
		Entity:        "users",
		EntityID:      id.String(),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit usuario", slog.Any("error", err))
	}
}
