package financeiro

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetMulta loads the fee policy for one institution.
func (r *Repository) GetMulta(ctx context.Context, institutionID uuid.UUID) (ConfiguracaoMulta, error) {
	var c ConfiguracaoMulta
	err := r.pool.QueryRow(ctx, `SELECT institution_id, percentual_multa, juros_diario, dias_carencia, ativo, updated_by, updated_at
FROM configuracao_multa WHERE institution_id = $1`, institutionID).
		Scan(&c.InstitutionID, &c.PercentualMulta, &c.JurosDiario, &c.DiasCarencia, &c.Ativo, &c.UpdatedBy, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ConfiguracaoMulta{}, shared.ErrNotFound
		}
		return ConfiguracaoMulta{}, err
	}
	return c, nil
}

// UpsertMulta saves the fee policy for one institution.
func (r *Repository) UpsertMulta(ctx context.Context, c ConfiguracaoMulta) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO configuracao_multa
(institution_id, percentual_multa, juros_diario, dias_carencia, ativo, updated_by, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (institution_id) DO UPDATE SET
percentual_multa = EXCLUDED.percentual_multa,
juros_diario = EXCLUDED.juros_diario,
dias_carencia = EXCLUDED.dias_carencia,
ativo = EXCLUDED.ativo,
updated_by = EXCLUDED.updated_by,
updated_at = NOW()`,
		c.InstitutionID, c.PercentualMulta, c.JurosDiario, c.DiasCarencia, c.Ativo, c.UpdatedBy)
	return err
}
