package usuarios

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsicola/dsicola-sub019/internal/auth"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Repository provides PostgreSQL backed persistence for account
// administration. It shares the users table with the auth package.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, institution_id, is_active, two_factor_enabled, COALESCE(two_factor_secret, ''), created_at, updated_at`

func scanUser(row pgx.Row) (auth.User, error) {
	var user auth.User
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &role, &user.InstitutionID,
		&user.IsActive, &user.TwoFactorEnabled, &user.TwoFactorSecret, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, shared.ErrNotFound
		}
		return auth.User{}, err
	}
	parsed, err := shared.ParseRole(role)
	if err != nil {
		return auth.User{}, err
	}
	user.Role = parsed
	return user, nil
}

// Insert creates an account.
func (r *Repository) Insert(ctx context.Context, in CreateInput, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users
(id, email, name, password_hash, role, institution_id, is_active, two_factor_enabled, created_at, updated_at)
VALUES ($1, lower($2), $3, $4, $5, $6, TRUE, FALSE, NOW(), NOW())
RETURNING `+userColumns,
		uuid.New(), in.Email, in.Name, passwordHash, string(in.Role), in.InstitutionID)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.User{}, ErrEmailDuplicado
		}
		return auth.User{}, err
	}
	return user, nil
}

// Get loads one account within the scope.
func (r *Repository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	args := []any{id}
	if !scope.AllInstitutions() {
		query += ` AND institution_id = $2`
		args = append(args, scope.InstitutionID())
	}
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// List returns accounts under the scope, optionally filtered by role.
func (r *Repository) List(ctx context.Context, scope shared.Scope, role *shared.Role, limit, offset int) ([]auth.User, error) {
	where := ` WHERE TRUE`
	var args []any
	if !scope.AllInstitutions() {
		args = append(args, scope.InstitutionID())
		where += fmt.Sprintf(` AND institution_id = $%d`, len(args))
	}
	if role != nil {
		args = append(args, string(*role))
		where += fmt.Sprintf(` AND role = $%d`, len(args))
	}
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	query := `SELECT ` + userColumns + ` FROM users` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	return list, rows.Err()
}

// Update applies the provided account changes within the scope.
func (r *Repository) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, in UpdateInput) (auth.User, error) {
	sets := []string{`updated_at = NOW()`}
	args := []any{id}
	if in.Name != nil {
		args = append(args, *in.Name)
		sets = append(sets, fmt.Sprintf(`name = $%d`, len(args)))
	}
	if in.Role != nil {
		args = append(args, string(*in.Role))
		sets = append(sets, fmt.Sprintf(`role = $%d`, len(args)))
	}
	if in.IsActive != nil {
		args = append(args, *in.IsActive)
		sets = append(sets, fmt.Sprintf(`is_active = $%d`, len(args)))
	}
	query := `UPDATE users SET `
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += ` WHERE id = $1`
	if !scope.AllInstitutions() {
		args = append(args, scope.InstitutionID())
		query += fmt.Sprintf(` AND institution_id = $%d`, len(args))
	}
	query += ` RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// SetPassword replaces the account's password hash within the scope.
func (r *Repository) SetPassword(ctx context.Context, scope shared.Scope, id uuid.UUID, hash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	args := []any{id, hash}
	if !scope.AllInstitutions() {
		args = append(args, scope.InstitutionID())
		query += fmt.Sprintf(` AND institution_id = $%d`, len(args))
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountActiveAdmins counts active ADMIN accounts of one institution.
func (r *Repository) CountActiveAdmins(ctx context.Context, institutionID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users
WHERE institution_id = $1 AND role = $2 AND is_active`, institutionID, string(shared.RoleAdmin)).Scan(&n)
	return n, err
}
