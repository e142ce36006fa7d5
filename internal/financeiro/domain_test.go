package financeiro

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfiguracaoMulta(t *testing.T) {
	inst := uuid.New()
	cfg := DefaultConfiguracaoMulta(inst)

	assert.Equal(t, inst, cfg.InstitutionID)
	assert.Equal(t, 2.0, cfg.PercentualMulta)
	assert.Equal(t, 0.033, cfg.JurosDiario)
	assert.Equal(t, 5, cfg.DiasCarencia)
	assert.True(t, cfg.Ativo)
	assert.Nil(t, cfg.UpdatedBy)
}

func TestUpdateMultaInputValidate(t *testing.T) {
	valid := UpdateMultaInput{PercentualMulta: 3, JurosDiario: 0.05, DiasCarencia: 10, Ativo: true}
	assert.NoError(t, valid.Validate())

	assert.NoError(t, UpdateMultaInput{PercentualMulta: 0, JurosDiario: 0, DiasCarencia: 0}.Validate())
	assert.NoError(t, UpdateMultaInput{PercentualMulta: 100, JurosDiario: 10, DiasCarencia: 90}.Validate())

	assert.Error(t, UpdateMultaInput{PercentualMulta: -1}.Validate())
	assert.Error(t, UpdateMultaInput{PercentualMulta: 101}.Validate())
	assert.Error(t, UpdateMultaInput{JurosDiario: -0.1}.Validate())
	assert.Error(t, UpdateMultaInput{JurosDiario: 10.5}.Validate())
	assert.Error(t, UpdateMultaInput{DiasCarencia: -1}.Validate())
	assert.Error(t, UpdateMultaInput{DiasCarencia: 91}.Validate())
}
