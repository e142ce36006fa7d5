package encerramento

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateAnoInputValidate(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, 7, 31, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, CreateAnoInput{Ano: 2026, StartDate: start, EndDate: end}.Validate())

	assert.Error(t, CreateAnoInput{Ano: 1999, StartDate: start, EndDate: end}.Validate())
	assert.Error(t, CreateAnoInput{Ano: 2026, EndDate: end}.Validate())
	assert.Error(t, CreateAnoInput{Ano: 2026, StartDate: start}.Validate())
	assert.Error(t, CreateAnoInput{Ano: 2026, StartDate: end, EndDate: start}.Validate())
}

func TestDefaultChecklistCodes(t *testing.T) {
	codes := make(map[string]bool, len(DefaultChecklist))
	for _, def := range DefaultChecklist {
		assert.NotEmpty(t, def.Label, "code %s", def.Code)
		codes[def.Code] = true
	}
	assert.True(t, codes["PAUTAS_APROVADAS"])
	assert.True(t, codes["FINANCEIRO_REGULARIZADO"])
	assert.True(t, codes["PRESENCAS_VALIDADAS"])
	assert.Len(t, codes, len(DefaultChecklist), "duplicate checklist codes")
}
