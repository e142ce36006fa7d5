package pautas

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const pautaColumns = `p.id, p.institution_id, p.professor_id, p.disciplina, p.turma, p.ano_letivo,
COALESCE(re.estado, 'RASCUNHO'), p.created_at, p.updated_at`

const pautaJoin = ` FROM pautas p LEFT JOIN registo_estados re ON re.module = 'pautas' AND re.ref_id = p.id`

func scanPauta(row pgx.Row) (Pauta, error) {
	var p Pauta
	var estado string
	if err := row.Scan(&p.ID, &p.InstitutionID, &p.ProfessorID, &p.Disciplina, &p.Turma,
		&p.AnoLetivo, &estado, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pauta{}, shared.ErrNotFound
		}
		return Pauta{}, err
	}
	p.Estado = workflow.Estado(estado)
	return p, nil
}

// Insert creates a sheet inside the scope's institution.
func (r *Repository) Insert(ctx context.Context, scope shared.Scope, in CreatePautaInput) (Pauta, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `INSERT INTO pautas (id, institution_id, professor_id, disciplina, turma, ano_letivo, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`,
		id, scope.InstitutionID(), in.ProfessorID, in.Disciplina, in.Turma, in.AnoLetivo)
	if err != nil {
		return Pauta{}, err
	}
	return r.Get(ctx, scope, id)
}

// Get loads one sheet with its grades. The row is fetched by id and checked
// against the scope afterwards, so a sheet of another institution surfaces
// as ErrInstitutionMismatch rather than pretending not to exist.
func (r *Repository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (Pauta, error) {
	query := `SELECT ` + pautaColumns + pautaJoin + ` WHERE p.id = $1`
	pauta, err := scanPauta(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return Pauta{}, err
	}
	if !scope.Covers(pauta.InstitutionID) {
		return Pauta{}, shared.ErrInstitutionMismatch
	}
	notas, err := r.loadNotas(ctx, pauta.ID)
	if err != nil {
		return Pauta{}, err
	}
	pauta.Notas = notas
	return pauta, nil
}

// List returns sheets under the scope, optionally restricted to one professor.
func (r *Repository) List(ctx context.Context, scope shared.Scope, professorID *uuid.UUID, limit, offset int) ([]Pauta, error) {
	where := ` WHERE TRUE`
	var args []any
	if !scope.AllInstitutions() {
		args = append(args, scope.InstitutionID())
		where += fmt.Sprintf(` AND p.institution_id = $%d`, len(args))
	}
	if professorID != nil {
		args = append(args, *professorID)
		where += fmt.Sprintf(` AND p.professor_id = $%d`, len(args))
	}
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	query := `SELECT ` + pautaColumns + pautaJoin + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Pauta
	for rows.Next() {
		var p Pauta
		var estado string
		if err := rows.Scan(&p.ID, &p.InstitutionID, &p.ProfessorID, &p.Disciplina, &p.Turma,
			&p.AnoLetivo, &estado, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Estado = workflow.Estado(estado)
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ReplaceNotas rewrites the grade lines of a sheet.
func (r *Repository) ReplaceNotas(ctx context.Context, pautaID uuid.UUID, notas []NotaInput) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if _, err := tx.Exec(ctx, `DELETE FROM pauta_notas WHERE pauta_id = $1`, pautaID); err != nil {
		return err
	}
	for _, nota := range notas {
		if _, err := tx.Exec(ctx, `INSERT INTO pauta_notas (id, pauta_id, aluno_id, valor) VALUES ($1, $2, $3, $4)`,
			uuid.New(), pautaID, nota.AlunoID, nota.Valor); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE pautas SET updated_at = NOW() WHERE id = $1`, pautaID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a sheet and its grades within the scope.
func (r *Repository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	query := `DELETE FROM pautas WHERE id = $1`
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

func (r *Repository) loadNotas(ctx context.Context, pautaID uuid.UUID) ([]Nota, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, pauta_id, aluno_id, valor FROM pauta_notas WHERE pauta_id = $1 ORDER BY aluno_id`, pautaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notas []Nota
	for rows.Next() {
		var n Nota
		if err := rows.Scan(&n.ID, &n.PautaID, &n.AlunoID, &n.Valor); err != nil {
			return nil, err
		}
		notas = append(notas, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notas, nil
}
