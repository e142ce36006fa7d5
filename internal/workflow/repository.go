package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsicola/dsicola-sub019/internal/platform/db"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// RegistoEstado is the persisted workflow state of one record.
type RegistoEstado struct {
	Module         string
	RefID          uuid.UUID
	InstitutionID  uuid.UUID
	Estado         Estado
	EstadoAnterior *Estado
	UpdatedAt      time.Time
}

// Transicao is one applied transition in the history trail.
type Transicao struct {
	ID      int64
	Module  string
	RefID   uuid.UUID
	ActorID uuid.UUID
	De      Estado
	Acao    Acao
	Para    Estado
	Note    string
	At      time.Time
}

// Repository persists workflow state and transition history.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	if r == nil || r.pool == nil {
		return errors.New("workflow: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, fn)
}

// Registar creates the state row for a new record, starting in RASCUNHO.
func (r *Repository) Registar(ctx context.Context, module string, ref uuid.UUID, scope shared.Scope) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO registo_estados (module, ref_id, institution_id, estado, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (module, ref_id) DO NOTHING`, module, ref, scope.InstitutionID(), EstadoRascunho)
	return err
}

// LoadForUpdate locks and returns the state row inside tx.
func (r *Repository) LoadForUpdate(ctx context.Context, tx pgx.Tx, module string, ref uuid.UUID) (RegistoEstado, error) {
	row := tx.QueryRow(ctx, `SELECT module, ref_id, institution_id, estado, estado_anterior, updated_at
FROM registo_estados WHERE module = $1 AND ref_id = $2 FOR UPDATE`, module, ref)
	return scanEstado(row)
}

// Load returns the state row without locking.
func (r *Repository) Load(ctx context.Context, module string, ref uuid.UUID) (RegistoEstado, error) {
	row := r.pool.QueryRow(ctx, `SELECT module, ref_id, institution_id, estado, estado_anterior, updated_at
FROM registo_estados WHERE module = $1 AND ref_id = $2`, module, ref)
	return scanEstado(row)
}

func scanEstado(row pgx.Row) (RegistoEstado, error) {
	var reg RegistoEstado
	var estado string
	var anterior *string
	if err := row.Scan(&reg.Module, &reg.RefID, &reg.InstitutionID, &estado, &anterior, &reg.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RegistoEstado{}, shared.ErrNotFound
		}
		return RegistoEstado{}, err
	}
	reg.Estado = Estado(estado)
	if anterior != nil {
		prev := Estado(*anterior)
		reg.EstadoAnterior = &prev
	}
	return reg, nil
}

// UpdateEstado persists the new state inside tx. estadoAnterior is stored so
// REABRIR can return to the state held before BLOQUEAR.
func (r *Repository) UpdateEstado(ctx context.Context, tx pgx.Tx, module string, ref uuid.UUID, estado Estado, anterior *Estado) error {
	var prev *string
	if anterior != nil {
		s := string(*anterior)
		prev = &s
	}
	tag, err := tx.Exec(ctx, `UPDATE registo_estados SET estado = $3, estado_anterior = $4, updated_at = NOW()
WHERE module = $1 AND ref_id = $2`, module, ref, string(estado), prev)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AppendTransicao writes the history entry inside tx. A zero At is handed
// to postgres as NULL so the row falls back to NOW(); a zero time.Time would
// otherwise be encoded as a literal year-1 timestamp and wreck the trail's
// ordering.
func (r *Repository) AppendTransicao(ctx context.Context, tx pgx.Tx, t Transicao) error {
	if t.Module == "" || t.RefID == uuid.Nil || t.ActorID == uuid.Nil {
		return errors.New("workflow: transition requires module/ref/actor")
	}
	var at *time.Time
	if !t.At.IsZero() {
		at = &t.At
	}
	_, err := tx.Exec(ctx, `INSERT INTO registo_transicoes (module, ref_id, actor_id, de, acao, para, note, at)
VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))`,
		t.Module, t.RefID, t.ActorID, string(t.De), string(t.Acao), string(t.Para), t.Note, at)
	return err
}

// Historico lists transitions for a record, oldest first.
func (r *Repository) Historico(ctx context.Context, module string, ref uuid.UUID) ([]Transicao, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, module, ref_id, actor_id, de, acao, para, note, at
FROM registo_transicoes WHERE module = $1 AND ref_id = $2 ORDER BY at ASC`, module, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Transicao
	for rows.Next() {
		var t Transicao
		var de, acao, para string
		if err := rows.Scan(&t.ID, &t.Module, &t.RefID, &t.ActorID, &de, &acao, &para, &t.Note, &t.At); err != nil {
			return nil, err
		}
		t.De, t.Acao, t.Para = Estado(de), Acao(acao), Estado(para)
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
