package presencas

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseTipo(t *testing.T) {
	tipo, err := ParseTipo("ENTRADA")
	assert.NoError(t, err)
	assert.Equal(t, TipoEntrada, tipo)

	tipo, err = ParseTipo("SAIDA")
	assert.NoError(t, err)
	assert.Equal(t, TipoSaida, tipo)

	for _, bad := range []string{"", "entrada", "PAUSA"} {
		_, err := ParseTipo(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestCreateInputValidate(t *testing.T) {
	valid := CreateInput{
		FuncionarioID: uuid.New(),
		Tipo:          TipoEntrada,
		RegistadoEm:   time.Now(),
	}
	assert.NoError(t, valid.Validate())

	in := valid
	in.FuncionarioID = uuid.Nil
	assert.Error(t, in.Validate())

	in = valid
	in.Tipo = "ALMOCO"
	assert.Error(t, in.Validate())

	in = valid
	in.RegistadoEm = time.Time{}
	assert.Error(t, in.Validate())
}
