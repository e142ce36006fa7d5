// Package financeiro holds billing settings, starting with the late fee
// configuration applied to overdue tuition.
package financeiro

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ConfiguracaoMulta is the per-institution late fee policy.
type ConfiguracaoMulta struct {
	InstitutionID   uuid.UUID
	PercentualMulta float64
	JurosDiario     float64
	DiasCarencia    int
	Ativo           bool
	UpdatedBy       *uuid.UUID
	UpdatedAt       time.Time
}

// DefaultConfiguracaoMulta is returned when an institution never saved one.
func DefaultConfiguracaoMulta(institutionID uuid.UUID) ConfiguracaoMulta {
	return ConfiguracaoMulta{
		InstitutionID:   institutionID,
		PercentualMulta: 2.0,
		JurosDiario:     0.033,
		DiasCarencia:    5,
		Ativo:           true,
	}
}

// UpdateMultaInput carries a policy change.
type UpdateMultaInput struct {
	PercentualMulta float64
	JurosDiario     float64
	DiasCarencia    int
	Ativo           bool
}

// Validate bounds the policy values.
func (in UpdateMultaInput) Validate() error {
	if in.PercentualMulta < 0 || in.PercentualMulta > 100 {
		return errors.New("financeiro: percentual multa out of range 0-100")
	}
	if in.JurosDiario < 0 || in.JurosDiario > 10 {
		return errors.New("financeiro: juros diario out of range 0-10")
	}
	if in.DiasCarencia < 0 || in.DiasCarencia > 90 {
		return errors.New("financeiro: dias carencia out of range 0-90")
	}
	return nil
}
