// Package presencas records staff attendance, both manual entries and
// punches ingested from biometric devices.
package presencas

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Origem distinguishes how an attendance record entered the system.
type Origem string

const (
	OrigemManual      Origem = "MANUAL"
	OrigemDispositivo Origem = "DISPOSITIVO"
)

// Tipo is the punch direction.
type Tipo string

const (
	TipoEntrada Tipo = "ENTRADA"
	TipoSaida   Tipo = "SAIDA"
)

// ParseTipo validates a punch direction coming off the wire.
func ParseTipo(s string) (Tipo, error) {
	switch Tipo(s) {
	case TipoEntrada, TipoSaida:
		return Tipo(s), nil
	}
	return "", errors.New("presencas: tipo must be ENTRADA or SAIDA")
}

// Presenca is one attendance punch.
type Presenca struct {
	ID            uuid.UUID
	InstitutionID uuid.UUID
	FuncionarioID uuid.UUID
	Tipo          Tipo
	Origem        Origem
	DeviceID      *uuid.UUID
	RegistadoEm   time.Time
	CreatedAt     time.Time
}

// Device is a registered biometric terminal. Tokens are stored hashed;
// the clear token is only shown once at registration time.
type Device struct {
	ID            uuid.UUID
	InstitutionID uuid.UUID
	Name          string
	TokenHash     string
	Active        bool
	LastSeenAt    *time.Time
	CreatedAt     time.Time
}

// CreateInput carries fields for a manual attendance entry.
type CreateInput struct {
	FuncionarioID uuid.UUID
	Tipo          Tipo
	RegistadoEm   time.Time
}

// Validate checks a manual entry.
func (in CreateInput) Validate() error {
	if in.FuncionarioID == uuid.Nil {
		return errors.New("presencas: funcionario required")
	}
	if _, err := ParseTipo(string(in.Tipo)); err != nil {
		return err
	}
	if in.RegistadoEm.IsZero() {
		return errors.New("presencas: timestamp required")
	}
	return nil
}

// DevicePunch is the payload a biometric terminal posts.
type DevicePunch struct {
	FuncionarioID uuid.UUID
	Tipo          Tipo
	RegistadoEm   time.Time
}

// ErrDeviceToken indicates a missing, unknown or inactive device token.
var ErrDeviceToken = errors.New("presencas: invalid device token")

// ErrPunchDuplicado indicates a repeated punch within the dedup window.
var ErrPunchDuplicado = errors.New("presencas: duplicate punch")
