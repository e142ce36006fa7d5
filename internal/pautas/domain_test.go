package pautas

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dsicola/dsicola-sub019/internal/shared"
	"github.com/dsicola/dsicola-sub019/internal/workflow"
)

func TestCreatePautaInputValidate(t *testing.T) {
	valid := CreatePautaInput{
		ProfessorID: uuid.New(),
		Disciplina:  "Matemática",
		Turma:       "10A",
		AnoLetivo:   2026,
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]func(*CreatePautaInput){
		"missing professor":  func(in *CreatePautaInput) { in.ProfessorID = uuid.Nil },
		"blank disciplina":   func(in *CreatePautaInput) { in.Disciplina = "   " },
		"blank turma":        func(in *CreatePautaInput) { in.Turma = "" },
		"ano letivo too old": func(in *CreatePautaInput) { in.AnoLetivo = 1999 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}

func TestPodeAtualizarNotas(t *testing.T) {
	// Before approval, editability follows the workflow state alone.
	for _, role := range []shared.Role{shared.RoleProfessor, shared.RoleSecretaria, shared.RoleAdmin} {
		assert.True(t, PodeAtualizarNotas(workflow.EstadoRascunho, role))
		assert.True(t, PodeAtualizarNotas(workflow.EstadoEmRevisao, role))
		assert.False(t, PodeAtualizarNotas(workflow.EstadoEncerrado, role))
	}

	// Approved sheets stay locked to professors; approver roles may
	// still correct them.
	assert.False(t, PodeAtualizarNotas(workflow.EstadoAprovado, shared.RoleProfessor))
	assert.False(t, PodeAtualizarNotas(workflow.EstadoAprovado, shared.RoleAluno))
	assert.True(t, PodeAtualizarNotas(workflow.EstadoAprovado, shared.RoleSecretaria))
	assert.True(t, PodeAtualizarNotas(workflow.EstadoAprovado, shared.RoleAdmin))
	assert.True(t, PodeAtualizarNotas(workflow.EstadoAprovado, shared.RoleSuperAdmin))
}

func TestNotaInputValidate(t *testing.T) {
	assert.NoError(t, NotaInput{AlunoID: uuid.New(), Valor: 0}.Validate())
	assert.NoError(t, NotaInput{AlunoID: uuid.New(), Valor: 20}.Validate())
	assert.NoError(t, NotaInput{AlunoID: uuid.New(), Valor: 13.5}.Validate())

	assert.Error(t, NotaInput{AlunoID: uuid.Nil, Valor: 10}.Validate())
	assert.Error(t, NotaInput{AlunoID: uuid.New(), Valor: -0.5}.Validate())
	assert.Error(t, NotaInput{AlunoID: uuid.New(), Valor: 20.1}.Validate())
}
