// Package auditoria exposes the audit trail to auditors and admins.
// Writing stays with shared.AuditLogger; this package only reads.
package auditoria

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Filter narrows an audit trail query.
type Filter struct {
	ActorID *uuid.UUID
	Entity  string
	Action  string
	From    *time.Time
	To      *time.Time
}

// Repository provides read access to audit_logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns audit entries under the scope, newest first.
func (r *Repository) List(ctx context.Context, scope shared.Scope, filter Filter, limit, offset int) ([]shared.AuditLog, error) {
	where := ` WHERE TRUE`
	var args []any
	if !scope.AllInstitutions() {
		args = append(args, scope.InstitutionID())
		where += fmt.Sprintf(` AND institution_id = $%d`, len(args))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		where += fmt.Sprintf(` AND actor_id = $%d`, len(args))
	}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		where += fmt.Sprintf(` AND entity = $%d`, len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += fmt.Sprintf(` AND action = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(` AND at >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(` AND at <= $%d`, len(args))
	}
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	query := `SELECT actor_id, institution_id, action, entity, entity_id, meta, at FROM audit_logs` +
		where + fmt.Sprintf(` ORDER BY at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []shared.AuditLog
	for rows.Next() {
		var entry shared.AuditLog
		if err := rows.Scan(&entry.ActorID, &entry.InstitutionID, &entry.Action,
			&entry.Entity, &entry.EntityID, &entry.Meta, &entry.At); err != nil {
			return nil, err
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}
