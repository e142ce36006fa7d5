// Package pautas manages grade sheets and their approval lifecycle.
package pautas

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

// Module is the workflow module tag for grade sheets.
const Module = "pautas"

// Pauta is a grade sheet for one subject/class in a school year.
type Pauta struct {
	ID            uuid.UUID
	InstitutionID uuid.UUID
	ProfessorID   uuid.UUID
	Disciplina    string
	Turma         string
	AnoLetivo     int
	Estado        workflow.Estado
	Notas         []Nota
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Nota is one student's grade inside a sheet.
type Nota struct {
	ID      uuid.UUID
	PautaID uuid.UUID
	AlunoID uuid.UUID
	Valor   float64
}

// CreatePautaInput carries fields for a new sheet.
type CreatePautaInput struct {
	ProfessorID uuid.UUID
	Disciplina  string
	Turma       string
	AnoLetivo   int
}

// Validate ensures the input is coherent.
func (in CreatePautaInput) Validate() error {
	if in.ProfessorID == uuid.Nil {
		return errors.New("pautas: professor required")
	}
	if strings.TrimSpace(in.Disciplina) == "" {
		return errors.New("pautas: disciplina required")
	}
	if strings.TrimSpace(in.Turma) == "" {
		return errors.New("pautas: turma required")
	}
	if in.AnoLetivo < 2000 {
		return errors.New("pautas: ano letivo invalid")
	}
	return nil
}

// NotaInput is one grade entry in an update.
type NotaInput struct {
	AlunoID uuid.UUID
	Valor   float64
}

// Validate bounds the grade value.
func (in NotaInput) Validate() error {
	if in.AlunoID == uuid.Nil {
		return errors.New("pautas: aluno required")
	}
	if in.Valor < 0 || in.Valor > 20 {
		return errors.New("pautas: valor out of range 0-20")
	}
	return nil
}

// ErrNaoDono indicates a professor touching a sheet they do not own.
var ErrNaoDono = errors.New("pautas: sheet belongs to another professor")

// ErrPautaAprovada indicates a grade change on an approved sheet by a role
// outside the approver set.
var ErrPautaAprovada = errors.New("pautas: pauta aprovada; only approver roles may change it")

// PodeAtualizarNotas reports whether the role may rewrite grades given the
// sheet's current state. ENCERRADO is always frozen (enforced by the
// workflow); APROVADO additionally restricts edits to the roles that could
// have approved the sheet, so an approval cannot be silently undone.
func PodeAtualizarNotas(estado workflow.Estado, role shared.Role) bool {
	if estado != workflow.EstadoAprovado {
		return workflow.Editavel(estado)
	}
	return workflow.RoleAllowed(workflow.AcaoAprovar, role)
}
