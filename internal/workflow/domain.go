// Package workflow implements the submit/approve/reject/lock/reopen
// lifecycle shared by academic record types.
package workflow

import (
	"errors"
	"fmt"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Estado enumerates record lifecycle states.
type Estado string

const (
	EstadoRascunho  Estado = "RASCUNHO"
	EstadoEmRevisao Estado = "EM_REVISAO"
	EstadoAprovado  Estado = "APROVADO"
	EstadoEncerrado Estado = "ENCERRADO"
)

// Acao enumerates the transitions of the state machine.
type Acao string

const (
	AcaoSubmeter Acao = "SUBMETER"
	AcaoAprovar  Acao = "APROVAR"
	AcaoRejeitar Acao = "REJEITAR"
	AcaoBloquear Acao = "BLOQUEAR"
	AcaoReabrir  Acao = "REABRIR"
)

// ErrTransicaoInvalida is the sentinel for illegal transition attempts.
var ErrTransicaoInvalida = errors.New("workflow: transicao invalida")

// ErrRegistroEncerrado indicates a mutation against a locked record.
var ErrRegistroEncerrado = errors.New("workflow: registro encerrado")

// TransicaoError names the conflicting states of a rejected transition.
type TransicaoError struct {
	De   Estado
	Acao Acao
}

func (e *TransicaoError) Error() string {
	return fmt.Sprintf("workflow: acao %s nao permitida a partir de %s", e.Acao, e.De)
}

// Is makes TransicaoError match ErrTransicaoInvalida.
func (e *TransicaoError) Unwrap() error { return ErrTransicaoInvalida }

type transitionKey struct {
	de   Estado
	acao Acao
}

// Transition table. REABRIR maps to APROVADO as the fallback target; the
// service restores the persisted prior state when one exists.
var transitions = map[transitionKey]Estado{
	{EstadoRascunho, AcaoSubmeter}:  EstadoEmRevisao,
	{EstadoEmRevisao, AcaoSubmeter}: EstadoEmRevisao,
	{EstadoEmRevisao, AcaoAprovar}:  EstadoAprovado,
	{EstadoEmRevisao, AcaoRejeitar}: EstadoRascunho,
	{EstadoRascunho, AcaoBloquear}:  EstadoEncerrado,
	{EstadoEmRevisao, AcaoBloquear}: EstadoEncerrado,
	{EstadoAprovado, AcaoBloquear}:  EstadoEncerrado,
	{EstadoEncerrado, AcaoReabrir}:  EstadoAprovado,
}

// Role allow-lists per action. Flat lists, independently authored; no role
// implies another's permissions.
var actionRoles = map[Acao][]shared.Role{
	AcaoSubmeter: {shared.RoleProfessor, shared.RoleSecretaria, shared.RoleAdmin, shared.RoleSuperAdmin},
	AcaoAprovar:  {shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleSecretaria},
	AcaoRejeitar: {shared.RoleAdmin, shared.RoleSuperAdmin, shared.RoleSecretaria},
	AcaoBloquear: {shared.RoleAdmin, shared.RoleSuperAdmin},
	AcaoReabrir:  {shared.RoleAdmin, shared.RoleSuperAdmin},
}

// Proximo resolves the target state for (current, action). Rejections carry
// both the current state and the requested action.
func Proximo(de Estado, acao Acao) (Estado, error) {
	next, ok := transitions[transitionKey{de, acao}]
	if !ok {
		return "", &TransicaoError{De: de, Acao: acao}
	}
	return next, nil
}

// RoleAllowed reports whether the role may perform the action.
func RoleAllowed(acao Acao, role shared.Role) bool {
	return role.In(actionRoles[acao]...)
}

// Editavel reports whether field-level mutation is permitted in the state.
func Editavel(estado Estado) bool {
	return estado != EstadoEncerrado
}
