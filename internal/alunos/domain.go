// Package alunos manages student records scoped to an institution.
package alunos

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Aluno represents a student.
type Aluno struct {
	ID              uuid.UUID
	InstitutionID   uuid.UUID
	Nome            string
	Email           string
	NumeroMatricula string
	DataNascimento  *time.Time
	Ativo           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateAlunoInput carries validated fields for a new student.
type CreateAlunoInput struct {
	Nome            string
	Email           string
	NumeroMatricula string
	DataNascimento  *time.Time
}

// Validate ensures the input is coherent.
func (in CreateAlunoInput) Validate() error {
	if strings.TrimSpace(in.Nome) == "" {
		return errors.New("alunos: nome required")
	}
	if strings.TrimSpace(in.NumeroMatricula) == "" {
		return errors.New("alunos: numero de matricula required")
	}
	return nil
}

// UpdateAlunoInput carries updatable fields.
type UpdateAlunoInput struct {
	Nome           string
	Email          string
	DataNascimento *time.Time
	Ativo          bool
}

// ListAlunosRequest filters the listing.
type ListAlunosRequest struct {
	Search string
	Limit  int
	Offset int
}

// ErrMatriculaDuplicada indicates the enrolment number is taken within the institution.
var ErrMatriculaDuplicada = errors.New("alunos: numero de matricula ja existe")
