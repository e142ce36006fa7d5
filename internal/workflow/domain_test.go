package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

func TestProximoValidTransitions(t *testing.T) {
	cases := []struct {
		de   Estado
		acao Acao
		para Estado
	}{
		{EstadoRascunho, AcaoSubmeter, EstadoEmRevisao},
		{EstadoEmRevisao, AcaoSubmeter, EstadoEmRevisao},
		{EstadoEmRevisao, AcaoAprovar, EstadoAprovado},
		{EstadoEmRevisao, AcaoRejeitar, EstadoRascunho},
		{EstadoRascunho, AcaoBloquear, EstadoEncerrado},
		{EstadoEmRevisao, AcaoBloquear, EstadoEncerrado},
		{EstadoAprovado, AcaoBloquear, EstadoEncerrado},
		{EstadoEncerrado, AcaoReabrir, EstadoAprovado},
	}
	for _, tc := range cases {
		para, err := Proximo(tc.de, tc.acao)
		require.NoError(t, err, "%s + %s", tc.de, tc.acao)
		assert.Equal(t, tc.para, para)
	}
}

func TestProximoRejectsIllegalTransitions(t *testing.T) {
	cases := []struct {
		de   Estado
		acao Acao
	}{
		{EstadoRascunho, AcaoAprovar},
		{EstadoRascunho, AcaoRejeitar},
		{EstadoAprovado, AcaoSubmeter},
		{EstadoAprovado, AcaoAprovar},
		{EstadoEncerrado, AcaoSubmeter},
		{EstadoEncerrado, AcaoAprovar},
		{EstadoEncerrado, AcaoBloquear},
		{EstadoAprovado, AcaoReabrir},
	}
	for _, tc := range cases {
		_, err := Proximo(tc.de, tc.acao)
		require.Error(t, err, "%s + %s", tc.de, tc.acao)
		assert.ErrorIs(t, err, ErrTransicaoInvalida)

		var te *TransicaoError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, tc.de, te.De)
		assert.Equal(t, tc.acao, te.Acao)
	}
}

func TestTransicaoErrorNamesStates(t *testing.T) {
	err := &TransicaoError{De: EstadoEncerrado, Acao: AcaoAprovar}
	assert.Contains(t, err.Error(), "APROVAR")
	assert.Contains(t, err.Error(), "ENCERRADO")
}

func TestRoleAllowedPerAction(t *testing.T) {
	assert.True(t, RoleAllowed(AcaoSubmeter, shared.RoleProfessor))
	assert.True(t, RoleAllowed(AcaoAprovar, shared.RoleSecretaria))
	assert.True(t, RoleAllowed(AcaoBloquear, shared.RoleAdmin))
	assert.True(t, RoleAllowed(AcaoReabrir, shared.RoleSuperAdmin))

	// No hierarchy: each list stands on its own.
	assert.False(t, RoleAllowed(AcaoAprovar, shared.RoleProfessor))
	assert.False(t, RoleAllowed(AcaoBloquear, shared.RoleSecretaria))
	assert.False(t, RoleAllowed(AcaoReabrir, shared.RoleDirecao))
	assert.False(t, RoleAllowed(AcaoSubmeter, shared.RoleAluno))
}

func TestEditavel(t *testing.T) {
	assert.True(t, Editavel(EstadoRascunho))
	assert.True(t, Editavel(EstadoEmRevisao))
	assert.True(t, Editavel(EstadoAprovado))
	assert.False(t, Editavel(EstadoEncerrado))
}
