// Package encerramento drives the year-end closure of a school year:
// checklist runs, the hard close that locks grade sheets, and the
// term-gated reopening.
package encerramento

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AnoStatus enumerates school year lifecycle stages.
type AnoStatus string

const (
	AnoStatusAberto    AnoStatus = "ABERTO"
	AnoStatusParcial   AnoStatus = "ENCERRADO_PARCIAL"
	AnoStatusEncerrado AnoStatus = "ENCERRADO"
)

// RunStatus captures the lifecycle of a closure run.
type RunStatus string

const (
	RunStatusEmCurso   RunStatus = "EM_CURSO"
	RunStatusConcluido RunStatus = "CONCLUIDO"
	RunStatusCancelado RunStatus = "CANCELADO"
)

// ChecklistStatus describes checklist progress.
type ChecklistStatus string

const (
	ChecklistStatusPendente  ChecklistStatus = "PENDENTE"
	ChecklistStatusEmCurso   ChecklistStatus = "EM_CURSO"
	ChecklistStatusConcluido ChecklistStatus = "CONCLUIDO"
	ChecklistStatusIgnorado  ChecklistStatus = "IGNORADO"
)

// AnoLetivo is one school year scoped to an institution.
type AnoLetivo struct {
	ID            uuid.UUID
	InstitutionID uuid.UUID
	Ano           int
	StartDate     time.Time
	EndDate       time.Time
	Status        AnoStatus
	EncerradoBy   *uuid.UUID
	EncerradoAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Run represents a single execution of the closure checklist.
type Run struct {
	ID            uuid.UUID
	InstitutionID uuid.UUID
	AnoLetivoID   uuid.UUID
	Status        RunStatus
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	CompletedAt   *time.Time
	Notes         string
	Checklist     []ChecklistItem
}

// ChecklistItem is one task that must be resolved before a hard close.
type ChecklistItem struct {
	ID          uuid.UUID
	RunID       uuid.UUID
	Code        string
	Label       string
	Status      ChecklistStatus
	CompletedAt *time.Time
	Comment     string
	UpdatedAt   time.Time
}

// ChecklistDefinition describes seed checklist entries.
type ChecklistDefinition struct {
	Code  string
	Label string
}

// DefaultChecklist is seeded into every new closure run.
var DefaultChecklist = []ChecklistDefinition{
	{Code: "PAUTAS_APROVADAS", Label: "Todas as pautas aprovadas"},
	{Code: "FINANCEIRO_REGULARIZADO", Label: "Situação financeira regularizada"},
	{Code: "PRESENCAS_VALIDADAS", Label: "Registos de presença validados"},
}

// CreateAnoInput captures validation rules for new school years.
type CreateAnoInput struct {
	Ano       int
	StartDate time.Time
	EndDate   time.Time
}

// Validate ensures the input is coherent.
func (in CreateAnoInput) Validate() error {
	if in.Ano < 2000 {
		return errors.New("encerramento: ano letivo invalid")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return errors.New("encerramento: start and end date required")
	}
	if in.StartDate.After(in.EndDate) {
		return errors.New("encerramento: start date cannot be after end date")
	}
	return nil
}

// ChecklistUpdateInput controls checklist status changes.
type ChecklistUpdateInput struct {
	ItemID  uuid.UUID
	Status  ChecklistStatus
	Comment string
}

// ErrAnoEncerrado is returned when writing to a hard closed year.
var ErrAnoEncerrado = errors.New("encerramento: ano letivo already closed")

// ErrChecklistIncompleta blocks a hard close before the checklist is done.
var ErrChecklistIncompleta = errors.New("encerramento: checklist not complete")

// ErrChecklistBloqueada indicates updates on a cancelled run.
var ErrChecklistBloqueada = errors.New("encerramento: checklist cannot be updated in current state")

// ErrRunAtiva indicates a closure run already exists for the year.
var ErrRunAtiva = errors.New("encerramento: closure run already active for this year")

// ErrStatusChecklistInvalido indicates an unsupported checklist status.
var ErrStatusChecklistInvalido = errors.New("encerramento: invalid checklist status")

// ErrAnoOverlap indicates the requested year conflicts with an existing range.
var ErrAnoOverlap = errors.New("encerramento: year overlaps existing range")
