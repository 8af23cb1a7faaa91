package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonaScores_UnsetFieldsReadNeutral(t *testing.T) {
	romantic := 0.9
	scores := &PersonaScores{Romantic: &romantic}

	v, ok := scores.Vibe(VibeRomantic)
	assert.True(t, ok)
	assert.Equal(t, 0.9, v)

	v, ok = scores.Vibe(VibeNightlife)
	assert.True(t, ok)
	assert.Equal(t, NeutralPersonaScore, v)

	g, ok := scores.Group(GroupCouple)
	assert.True(t, ok)
	assert.Equal(t, NeutralPersonaScore, g)

	s, ok := scores.Season(SeasonWinter)
	assert.True(t, ok)
	assert.Equal(t, NeutralSeasonScore, s)

	_, ok = scores.Group(GroupType("astronauts"))
	assert.False(t, ok)

	var missing *PersonaScores
	_, ok = missing.Vibe(VibeRomantic)
	assert.False(t, ok)
}
