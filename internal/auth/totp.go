package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
)

const pendingSecretTTL = 10 * time.Minute

// ErrCodigoInvalido indicates a rejected TOTP code.
var ErrCodigoInvalido = errors.New("auth: invalid totp code")

// ErrSetupPendenteAusente indicates verify was called without a pending setup.
var ErrSetupPendenteAusente = errors.New("auth: no pending 2fa setup")

// TwoFactorManager handles the TOTP secret exchange. Unconfirmed secrets
// live in redis until the user proves possession with a first valid code.
type TwoFactorManager struct {
	client *redis.Client
	issuer string
}

// NewTwoFactorManager constructs a TwoFactorManager.
func NewTwoFactorManager(client *redis.Client, issuer string) *TwoFactorManager {
	if issuer == "" {
		issuer = "DSICOLA"
	}
	return &TwoFactorManager{client: client, issuer: issuer}
}

// BeginSetup generates a fresh secret for the user and parks it in redis.
// Returns the secret and the otpauth provisioning URL.
func (m *TwoFactorManager) BeginSetup(ctx context.Context, userID uuid.UUID, accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", err
	}
	if err := m.client.Set(ctx, m.pendingKey(userID), key.Secret(), pendingSecretTTL).Err(); err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ConfirmSetup validates the first code against the pending secret and
// returns the secret for persistence. The pending entry is consumed.
func (m *TwoFactorManager) ConfirmSetup(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	secret, err := m.client.Get(ctx, m.pendingKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSetupPendenteAusente
		}
		return "", err
	}
	if !totp.Validate(code, secret) {
		return "", ErrCodigoInvalido
	}
	_ = m.client.Del(ctx, m.pendingKey(userID)).Err()
	return secret, nil
}

// Validate checks a login code against the stored secret.
func (m *TwoFactorManager) Validate(code, secret string) error {
	if secret == "" || !totp.Validate(code, secret) {
		return ErrCodigoInvalido
	}
	return nil
}

// AbortSetup drops any pending secret for the user.
func (m *TwoFactorManager) AbortSetup(ctx context.Context, userID uuid.UUID) {
	_ = m.client.Del(ctx, m.pendingKey(userID)).Err()
}

func (m *TwoFactorManager) pendingKey(userID uuid.UUID) string {
	return "2fa:pending:" + userID.String()
}
