package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/paddlegame/internal/model"
)

func TestAdvanceForwardOnly(t *testing.T) {
	g := &model.Game{ID: "G1", State: model.GameStateRegistering}

	assert.ErrorIs(t, advance(g, model.GameStateOver), model.ErrConsistencyViolation)
	assert.NoError(t, advance(g, model.GameStateInProgress))
	assert.ErrorIs(t, advance(g, model.GameStateRegistering), model.ErrConsistencyViolation)
	assert.NoError(t, advance(g, model.GameStateOver))
	assert.ErrorIs(t, advance(g, model.GameStateInProgress), model.ErrConsistencyViolation)
	assert.Equal(t, model.GameStateOver, g.State)
}
