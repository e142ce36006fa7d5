package alunos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const alunoColumns = `id, institution_id, nome, email, numero_matricula, data_nascimento, ativo, created_at, updated_at`

func scanAluno(row pgx.Row) (Aluno, error) {
	var a Aluno
	if err := row.Scan(&a.ID, &a.InstitutionID, &a.Nome, &a.Email, &a.NumeroMatricula,
		&a.DataNascimento, &a.Ativo, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Aluno{}, shared.ErrNotFound
		}
		return Aluno{}, err
	}
	return a, nil
}

// Insert creates a student row inside the scope's institution.
func (r *Repository) Insert(ctx context.Context, scope shared.Scope, in CreateAlunoInput) (Aluno, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO alunos (id, institution_id, nome, nome_normalizado, email, numero_matricula, data_nascimento, ativo, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
RETURNING `+alunoColumns,
		uuid.New(), scope.InstitutionID(), in.Nome, NormalizeName(in.Nome), in.Email, in.NumeroMatricula, in.DataNascimento)
	aluno, err := scanAluno(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Aluno{}, ErrMatriculaDuplicada
		}
		return Aluno{}, err
	}
	return aluno, nil
}

// Get loads a student visible under the scope.
func (r *Repository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (Aluno, error) {
	query := `SELECT ` + alunoColumns + ` FROM alunos WHERE id = $1`
	args := []any{id}
	if !scope.AllInstitutions() {
		query += ` AND institution_id = $2`
		args = append(args, scope.InstitutionID())
	}
	return scanAluno(r.pool.QueryRow(ctx, query, args...))
}

// List returns students under the scope, optionally filtered by a
// normalized name search. Unrestricted scopes list across institutions.
func (r *Repository) List(ctx context.Context, scope shared.Scope, req ListAlunosRequest) ([]Aluno, int, error) {
	where := ` WHERE TRUE`
	var args []any
	if !scope.AllInstitutions() {
		args = append(args, scope.InstitutionID())
		where += fmt.Sprintf(` AND institution_id = $%d`, len(args))
	}
	if req.Search != "" {
		args = append(args, "%"+NormalizeName(req.Search)+"%")
		where += fmt.Sprintf(` AND nome_normalizado LIKE $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alunos`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := req.Limit, req.Offset
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	query := `SELECT ` + alunoColumns + ` FROM alunos` + where +
		fmt.Sprintf(` ORDER BY nome_normalizado LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Aluno
	for rows.Next() {
		var a Aluno
		if err := rows.Scan(&a.ID, &a.InstitutionID, &a.Nome, &a.Email, &a.NumeroMatricula,
			&a.DataNascimento, &a.Ativo, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update persists changes to a student within the scope.
func (r *Repository) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, in UpdateAlunoInput) (Aluno, error) {
	query := `UPDATE alunos SET nome = $2, nome_normalizado = $3, email = $4, data_nascimento = $5, ativo = $6, updated_at = NOW()
WHERE id = $1`
	args := []any{id, in.Nome, NormalizeName(in.Nome), in.Email, in.DataNascimento, in.Ativo}
	if !scope.AllInstitutions() {
		query += ` AND institution_id = $7`
		args = append(args, scope.InstitutionID())
	}
	query += ` RETURNING ` + alunoColumns
	return scanAluno(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes a student within the scope.
func (r *Repository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	query := `DELETE FROM alunos WHERE id = $1`
	args := []any{id}
	if !scope.AllInstitutions() {
		query += ` AND institution_id = $2`
		args = append(args, scope.InstitutionID())
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
