package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Term action types gated by an explicit legal acceptance.
const (
	TermActionEncerramento = "ENCERRAMENTO_ANO"
	TermActionReabertura   = "REABERTURA"
	TermActionRestauro     = "RESTAURO_BACKUP"
)

// TermAcceptance records that a user accepted the liability term for an action.
type TermAcceptance struct {
	UserID     uuid.UUID
	ActionType string
	AcceptedAt time.Time
	ExpiresAt  time.Time
}

// TermStore persists legal-term acceptances keyed by (user, action type).
type TermStore struct {
	pool     *pgxpool.Pool
	validity time.Duration
}

// NewTermStore constructs the store. Acceptances expire after validity.
func NewTermStore(pool *pgxpool.Pool, validity time.Duration) *TermStore {
	if validity <= 0 {
		validity = 24 * time.Hour
	}
	return &TermStore{pool: pool, validity: validity}
}

// Accept records the acceptance, replacing any previous one for the same key.
func (s *TermStore) Accept(ctx context.Context, userID uuid.UUID, actionType string) (TermAcceptance, error) {
	if s == nil {
		return TermAcceptance{}, errors.New("term store not initialised")
	}
	if actionType == "" {
		return TermAcceptance{}, errors.New("term action type required")
	}
	now := time.Now()
	acc := TermAcceptance{UserID: userID, ActionType: actionType, AcceptedAt: now, ExpiresAt: now.Add(s.validity)}
	_, err := s.pool.Exec(ctx, `INSERT INTO termo_aceites (user_id, action_type, accepted_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, action_type) DO UPDATE SET accepted_at = EXCLUDED.accepted_at, expires_at = EXCLUDED.expires_at`,
		acc.UserID, acc.ActionType, acc.AcceptedAt, acc.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return TermAcceptance{}, errors.New("term store: " + pgErr.Message)
		}
		return TermAcceptance{}, err
	}
	return acc, nil
}

// CheckCurrent verifies a non-expired acceptance exists for (user, action).
// Returns ErrTermoNaoAceite when missing or expired.
func (s *TermStore) CheckCurrent(ctx context.Context, userID uuid.UUID, actionType string) error {
	if s == nil {
		return errors.New("term store not initialised")
	}
	var expiresAt time.Time
	err := s.pool.QueryRow(ctx, `SELECT expires_at FROM termo_aceites WHERE user_id = $1 AND action_type = $2`,
		userID, actionType).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTermoNaoAceite
		}
		return err
	}
	if time.Now().After(expiresAt) {
		return ErrTermoNaoAceite
	}
	return nil
}

// Cleanup removes expired acceptances.
func (s *TermStore) Cleanup(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM termo_aceites WHERE expires_at < NOW()`)
	return err
}
