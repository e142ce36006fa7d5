package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*TwoFactorManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTwoFactorManager(client, "DSICOLA"), mr
}

func TestBeginSetupParksSecret(t *testing.T) {
	mgr, mr := newTestManager(t)
	userID := uuid.New()

	secret, url, err := mgr.BeginSetup(context.Background(), userID, "prof@escola.ao")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Contains(t, url, "otpauth://")
	assert.Contains(t, url, "DSICOLA")

	parked, err := mr.Get("2fa:pending:" + userID.String())
	require.NoError(t, err)
	assert.Equal(t, secret, parked)
}

func TestConfirmSetupAcceptsValidCode(t *testing.T) {
	mgr, mr := newTestManager(t)
	userID := uuid.New()

	secret, _, err := mgr.BeginSetup(context.Background(), userID, "prof@escola.ao")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	confirmed, err := mgr.ConfirmSetup(context.Background(), userID, code)
	require.NoError(t, err)
	assert.Equal(t, secret, confirmed)

	// The pending entry is consumed on success.
	assert.False(t, mr.Exists("2fa:pending:"+userID.String()))
}

func TestConfirmSetupRejectsWrongCode(t *testing.T) {
	mgr, mr := newTestManager(t)
	userID := uuid.New()

	_, _, err := mgr.BeginSetup(context.Background(), userID, "prof@escola.ao")
	require.NoError(t, err)

	_, err = mgr.ConfirmSetup(context.Background(), userID, "000000")
	assert.ErrorIs(t, err, ErrCodigoInvalido)

	// A failed attempt keeps the pending secret so the user can retry.
	assert.True(t, mr.Exists("2fa:pending:"+userID.String()))
}

func TestConfirmSetupWithoutPending(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.ConfirmSetup(context.Background(), uuid.New(), "123456")
	assert.ErrorIs(t, err, ErrSetupPendenteAusente)
}

func TestAbortSetupDropsPending(t *testing.T) {
	mgr, mr := newTestManager(t)
	userID := uuid.New()

	_, _, err := mgr.BeginSetup(context.Background(), userID, "prof@escola.ao")
	require.NoError(t, err)

	mgr.AbortSetup(context.Background(), userID)
	assert.False(t, mr.Exists("2fa:pending:"+userID.String()))

	_, err = mgr.ConfirmSetup(context.Background(), userID, "123456")
	assert.ErrorIs(t, err, ErrSetupPendenteAusente)
}

func TestValidateLoginCode(t *testing.T) {
	mgr, _ := newTestManager(t)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "DSICOLA", AccountName: "prof@escola.ao"})
	require.NoError(t, err)

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)

	assert.NoError(t, mgr.Validate(code, key.Secret()))
	assert.ErrorIs(t, mgr.Validate("000000", key.Secret()), ErrCodigoInvalido)
	assert.ErrorIs(t, mgr.Validate(code, ""), ErrCodigoInvalido)
}
