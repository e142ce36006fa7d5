package auth

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo      *Repository
	issuer    *TokenIssuer
	twoFactor *TwoFactorManager
}

// NewService constructs a new Service.
func NewService(repo *Repository, issuer *TokenIssuer, twoFactor *TwoFactorManager) *Service {
	return &Service{repo: repo, issuer: issuer, twoFactor: twoFactor}
}

// LoginResult is the outcome of a credential check.
type LoginResult struct {
	Token             string
	TwoFactorRequired bool
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login checks credentials and issues either a full token or, for 2FA-enrolled
// accounts, a pending token that must be exchanged via Complete2FA.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	if user.TwoFactorEnabled {
		token, err := s.issuer.IssuePending(*user)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{Token: token, TwoFactorRequired: true}, nil
	}
	token, err := s.issuer.Issue(*user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token}, nil
}

// Complete2FA exchanges a pending-scope principal plus a valid TOTP code for
// a full token.
func (s *Service) Complete2FA(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", shared.ErrInvalidCredentials
	}
	if err := s.twoFactor.Validate(code, user.TwoFactorSecret); err != nil {
		return "", err
	}
	return s.issuer.Issue(*user)
}

// Setup2FA starts TOTP enrolment for the user.
func (s *Service) Setup2FA(ctx context.Context, userID uuid.UUID) (secret, url string, err error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return s.twoFactor.BeginSetup(ctx, user.ID, user.Email)
}

// Confirm2FA completes enrolment with the first valid code.
func (s *Service) Confirm2FA(ctx context.Context, userID uuid.UUID, code string) error {
	secret, err := s.twoFactor.ConfirmSetup(ctx, userID, code)
	if err != nil {
		return err
	}
	return s.repo.SetTwoFactor(ctx, userID, true, secret)
}

// Disable2FA removes enrolment after the current code is presented.
func (s *Service) Disable2FA(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.twoFactor.Validate(code, user.TwoFactorSecret); err != nil {
		return err
	}
	return s.repo.SetTwoFactor(ctx, userID, false, "")
}

// Reset2FA clears enrolment for a target account without a code. Reserved for
// administrator recovery flows; the handler gates the roles.
func (s *Service) Reset2FA(ctx context.Context, targetUserID uuid.UUID) error {
	s.twoFactor.AbortSetup(ctx, targetUserID)
	return s.repo.SetTwoFactor(ctx, targetUserID, false, "")
}

// Status2FA reports enrolment state for the user.
func (s *Service) Status2FA(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.TwoFactorEnabled, nil
}
