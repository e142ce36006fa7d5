package presencas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Repository provides PostgreSQL backed persistence for attendance.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// HashToken derives the stored form of a device token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Insert stores one punch. A unique index on (funcionario_id, tipo,
// registado_em) catches device retries.
func (r *Repository) Insert(ctx context.Context, p Presenca) (Presenca, error) {
	p.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `INSERT INTO presencas
(id, institution_id, funcionario_id, tipo, origem, device_id, registado_em, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
RETURNING created_at`,
		p.ID, p.InstitutionID, p.FuncionarioID, p.Tipo, p.Origem, p.DeviceID, p.RegistadoEm).Scan(&p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Presenca{}, ErrPunchDuplicado
		}
		return Presenca{}, err
	}
	return p, nil
}

// List returns punches under the scope, newest first, optionally filtered
// to one employee.
func (r *Repository) List(ctx context.Context, scope shared.Scope, funcionarioID *uuid.UUID, limit, offset int) ([]Presenca, error) {
	where := ` WHERE TRUE`
	var args []any
	if !scope.AllInstitutions() {
		args = append(args, scope.InstitutionID())
		where += fmt.Sprintf(` AND institution_id = $%d`, len(args))
	}
	if funcionarioID != nil {
		args = append(args, *funcionarioID)
		where += fmt.Sprintf(` AND funcionario_id = $%d`, len(args))
	}
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	query := `SELECT id, institution_id, funcionario_id, tipo, origem, device_id, registado_em, created_at
FROM presencas` + where + fmt.Sprintf(` ORDER BY registado_em DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Presenca
	for rows.Next() {
		var p Presenca
		var tipo, origem string
		if err := rows.Scan(&p.ID, &p.InstitutionID, &p.FuncionarioID, &tipo, &origem,
			&p.DeviceID, &p.RegistadoEm, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Tipo, p.Origem = Tipo(tipo), Origem(origem)
		list = append(list, p)
	}
	return list, rows.Err()
}

// FindDeviceByTokenHash resolves an active device from a hashed token.
func (r *Repository) FindDeviceByTokenHash(ctx context.Context, hash string) (Device, error) {
	var d Device
	err := r.pool.QueryRow(ctx, `SELECT id, institution_id, name, token_hash, active, last_seen_at, created_at
FROM biometric_devices WHERE token_hash = $1 AND active`, hash).
		Scan(&d.ID, &d.InstitutionID, &d.Name, &d.TokenHash, &d.Active, &d.LastSeenAt, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Device{}, ErrDeviceToken
		}
		return Device{}, err
	}
	return d, nil
}

// TouchDevice records when a device last reported in. Best effort.
func (r *Repository) TouchDevice(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE biometric_devices SET last_seen_at = NOW() WHERE id = $1`, id)
	return err
}

// InsertDevice registers a terminal under an institution.
func (r *Repository) InsertDevice(ctx context.Context, d Device) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO biometric_devices
(id, institution_id, name, token_hash, active, created_at)
VALUES ($1, $2, $3, $4, TRUE, NOW())`,
		d.ID, d.InstitutionID, d.Name, d.TokenHash)
	return err
}

// DeactivateDevice revokes a terminal within the scope.
func (r *Repository) DeactivateDevice(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	query := `UPDATE biometric_devices SET active = FALSE WHERE id = $1`
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

// ListDevices returns terminals under the scope.
func (r *Repository) ListDevices(ctx context.Context, scope shared.Scope) ([]Device, error) {
	query := `SELECT id, institution_id, name, token_hash, active, last_seen_at, created_at FROM biometric_devices`
	var args []any
	if !scope.AllInstitutions() {
		query += ` WHERE institution_id = $1`
		args = append(args, scope.InstitutionID())
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.InstitutionID, &d.Name, &d.TokenHash, &d.Active, &d.LastSeenAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
