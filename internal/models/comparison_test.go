package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstadoValid(t *testing.T) {
	assert.True(t, EstadoReciente.Valid())
	assert.True(t, EstadoDestacado.Valid())
	assert.True(t, EstadoOculto.Valid())
	assert.False(t, Estado("eliminado").Valid())
	assert.False(t, Estado("").Valid())
}

func TestProviderValid(t *testing.T) {
	assert.True(t, ProviderClaude.Valid())
	assert.True(t, ProviderDeepSeek.Valid())
	assert.False(t, Provider("claude").Valid())
	assert.False(t, Provider("Mistral").Valid())
}
