package alunos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"José António", "jose antonio"},
		{"  Maria  ", "maria"},
		{"CONCEIÇÃO", "conceicao"},
		{"N'Gola Kiluanji", "n'gola kiluanji"},
		{"plain name", "plain name"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeNameIsIdempotent(t *testing.T) {
	once := NormalizeName("Sebastião Câmara")
	assert.Equal(t, once, NormalizeName(once))
}
