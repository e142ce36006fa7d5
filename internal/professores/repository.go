package professores

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

// FindByUser loads the professor record for a user within the tenant scope.
func (r *Repository) FindByUser(ctx context.Context, scope shared.Scope, userID uuid.UUID) (Professor, error) {
	query := `SELECT id, user_id, institution_id, nome, created_at, updated_at
FROM professores WHERE user_id = $1`
	args := []any{userID}
	if !scope.AllInstitutions() {
		query += ` AND institution_id = $2`
		args = append(args, scope.InstitutionID())
	}
	var p Professor
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.UserID, &p.InstitutionID, &p.Nome, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Professor{}, shared.ErrNotFound
		}
		return Professor{}, err
	}
	return p, nil
}
