package encerramento

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Repository provides PostgreSQL backed persistence for closures.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const anoColumns = `id, institution_id, ano, start_date, end_date, status, encerrado_by, encerrado_at, created_at, updated_at`

func scanAno(row pgx.Row) (AnoLetivo, error) {
	var a AnoLetivo
	var status string
	if err := row.Scan(&a.ID, &a.InstitutionID, &a.Ano, &a.StartDate, &a.EndDate, &status,
		&a.EncerradoBy, &a.EncerradoAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AnoLetivo{}, shared.ErrNotFound
		}
		return AnoLetivo{}, err
	}
	a.Status = AnoStatus(status)
	return a, nil
}

// AnoRangeConflict reports whether a year range overlaps an existing one.
func (r *Repository) AnoRangeConflict(ctx context.Context, institutionID uuid.UUID, start, end time.Time) (bool, error) {
	var conflict bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM anos_letivos
WHERE institution_id = $1 AND start_date <= $3 AND end_date >= $2)`,
		institutionID, start, end).Scan(&conflict)
	return conflict, err
}

// InsertAno creates a school year as ABERTO.
func (r *Repository) InsertAno(ctx context.Context, institutionID uuid.UUID, in CreateAnoInput) (AnoLetivo, error) {
	id := uuid.New()
	row := r.pool.QueryRow(ctx, `INSERT INTO anos_letivos
(id, institution_id, ano, start_date, end_date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
RETURNING `+anoColumns,
		id, institutionID, in.Ano, in.StartDate, in.EndDate, AnoStatusAberto)
	return scanAno(row)
}

// ListAnos returns years under the scope, newest first.
func (r *Repository) ListAnos(ctx context.Context, scope shared.Scope, limit, offset int) ([]AnoLetivo, error) {
	query := `SELECT ` + anoColumns + ` FROM anos_letivos`
	var args []any
	if !scope.AllInstitutions() {
		query += ` WHERE institution_id = $1`
		args = append(args, scope.InstitutionID())
	}
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY ano DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []AnoLetivo
	for rows.Next() {
		ano, err := scanAno(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, ano)
	}
	return list, rows.Err()
}

// LoadAno returns one year within the scope.
func (r *Repository) LoadAno(ctx context.Context, scope shared.Scope, id uuid.UUID) (AnoLetivo, error) {
	query := `SELECT ` + anoColumns + ` FROM anos_letivos WHERE id = $1`
	args := []any{id}
	if !scope.AllInstitutions() {
		query += ` AND institution_id = $2`
		args = append(args, scope.InstitutionID())
	}
	return scanAno(r.pool.QueryRow(ctx, query, args...))
}

// LoadAnoForUpdate locks a year row inside tx.
func (r *Repository) LoadAnoForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (AnoLetivo, error) {
	return scanAno(tx.QueryRow(ctx, `SELECT `+anoColumns+` FROM anos_letivos WHERE id = $1 FOR UPDATE`, id))
}

// UpdateAnoStatus flips a year's status, recording the closing actor.
func (r *Repository) UpdateAnoStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status AnoStatus, actorID uuid.UUID) error {
	var err error
	switch status {
	case AnoStatusAberto:
		_, err = tx.Exec(ctx, `UPDATE anos_letivos SET status = $2, encerrado_by = NULL, encerrado_at = NULL, updated_at = NOW() WHERE id = $1`, id, status)
	default:
		_, err = tx.Exec(ctx, `UPDATE anos_letivos SET status = $2, encerrado_by = $3, encerrado_at = NOW(), updated_at = NOW() WHERE id = $1`, id, status, actorID)
	}
	return err
}

// AnoHasActiveRun reports whether a closure run is already in progress.
func (r *Repository) AnoHasActiveRun(ctx context.Context, tx pgx.Tx, anoID uuid.UUID) (bool, error) {
	var active bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM encerramento_runs WHERE ano_letivo_id = $1 AND status = $2)`,
		anoID, RunStatusEmCurso).Scan(&active)
	return active, err
}

// InsertRun opens a closure run.
func (r *Repository) InsertRun(ctx context.Context, tx pgx.Tx, institutionID, anoID, actorID uuid.UUID, notes string) (Run, error) {
	run := Run{
		ID:            uuid.New(),
		InstitutionID: institutionID,
		AnoLetivoID:   anoID,
		Status:        RunStatusEmCurso,
		CreatedBy:     actorID,
		Notes:         notes,
	}
	err := tx.QueryRow(ctx, `INSERT INTO encerramento_runs
(id, institution_id, ano_letivo_id, status, created_by, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING created_at`,
		run.ID, run.InstitutionID, run.AnoLetivoID, run.Status, run.CreatedBy, run.Notes).Scan(&run.CreatedAt)
	return run, err
}

// InsertChecklistItems seeds checklist entries for a run.
func (r *Repository) InsertChecklistItems(ctx context.Context, tx pgx.Tx, runID uuid.UUID, defs []ChecklistDefinition) ([]ChecklistItem, error) {
	items := make([]ChecklistItem, 0, len(defs))
	for _, def := range defs {
		item := ChecklistItem{ID: uuid.New(), RunID: runID, Code: def.Code, Label: def.Label, Status: ChecklistStatusPendente}
		err := tx.QueryRow(ctx, `INSERT INTO encerramento_checklist
(id, run_id, code, label, status, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING updated_at`,
			item.ID, item.RunID, item.Code, item.Label, item.Status).Scan(&item.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

const runColumns = `id, institution_id, ano_letivo_id, status, created_by, notes, created_at, completed_at`

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	var status string
	if err := row.Scan(&run.ID, &run.InstitutionID, &run.AnoLetivoID, &status,
		&run.CreatedBy, &run.Notes, &run.CreatedAt, &run.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, shared.ErrNotFound
		}
		return Run{}, err
	}
	run.Status = RunStatus(status)
	return run, nil
}

// LoadRun returns a run with checklist, scoped.
func (r *Repository) LoadRun(ctx context.Context, scope shared.Scope, id uuid.UUID) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM encerramento_runs WHERE id = $1`
	args := []any{id}
	if !scope.AllInstitutions() {
		query += ` AND institution_id = $2`
		args = append(args, scope.InstitutionID())
	}
	run, err := scanRun(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return Run{}, err
	}
	items, err := r.loadChecklist(ctx, run.ID)
	if err != nil {
		return Run{}, err
	}
	run.Checklist = items
	return run, nil
}

// LoadRunForUpdate locks a run row inside tx.
func (r *Repository) LoadRunForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Run, error) {
	return scanRun(tx.QueryRow(ctx, `SELECT `+runColumns+` FROM encerramento_runs WHERE id = $1 FOR UPDATE`, id))
}

// UpdateRunStatus flips the run state.
func (r *Repository) UpdateRunStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status RunStatus) error {
	if status == RunStatusConcluido {
		_, err := tx.Exec(ctx, `UPDATE encerramento_runs SET status = $2, completed_at = NOW() WHERE id = $1`, id, status)
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE encerramento_runs SET status = $2 WHERE id = $1`, id, status)
	return err
}

// LockChecklistItemRun resolves and locks the run owning a checklist item.
func (r *Repository) LockChecklistItemRun(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (uuid.UUID, error) {
	var runID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT run_id FROM encerramento_checklist WHERE id = $1 FOR UPDATE`, itemID).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, shared.ErrNotFound
	}
	return runID, err
}

// UpdateChecklistStatus applies one checklist change.
func (r *Repository) UpdateChecklistStatus(ctx context.Context, tx pgx.Tx, in ChecklistUpdateInput) (ChecklistItem, error) {
	var item ChecklistItem
	var status string
	err := tx.QueryRow(ctx, `UPDATE encerramento_checklist
SET status = $2, comment = $3,
completed_at = CASE WHEN $2 IN ('CONCLUIDO', 'IGNORADO') THEN NOW() ELSE NULL END,
updated_at = NOW()
WHERE id = $1
RETURNING id, run_id, code, label, status, completed_at, comment, updated_at`,
		in.ItemID, in.Status, in.Comment).
		Scan(&item.ID, &item.RunID, &item.Code, &item.Label, &status, &item.CompletedAt, &item.Comment, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChecklistItem{}, shared.ErrNotFound
	}
	item.Status = ChecklistStatus(status)
	return item, err
}

// ChecklistDone reports whether every item is resolved.
func (r *Repository) ChecklistDone(ctx context.Context, tx pgx.Tx, runID uuid.UUID) (bool, error) {
	var pending int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM encerramento_checklist
WHERE run_id = $1 AND status NOT IN ('CONCLUIDO', 'IGNORADO')`, runID).Scan(&pending)
	return pending == 0, err
}

// PautaIDsForAno lists grade sheets belonging to a school year, used to
// lock them during the hard close.
func (r *Repository) PautaIDsForAno(ctx context.Context, institutionID uuid.UUID, ano int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM pautas WHERE institution_id = $1 AND ano_letivo = $2`, institutionID, ano)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) loadChecklist(ctx context.Context, runID uuid.UUID) ([]ChecklistItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, run_id, code, label, status, completed_at, comment, updated_at
FROM encerramento_checklist WHERE run_id = $1 ORDER BY code`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ChecklistItem
	for rows.Next() {
		var item ChecklistItem
		var status string
		if err := rows.Scan(&item.ID, &item.RunID, &item.Code, &item.Label, &status,
			&item.CompletedAt, &item.Comment, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.Status = ChecklistStatus(status)
		items = append(items, item)
	}
	return items, rows.Err()
}
