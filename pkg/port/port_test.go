package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, High, Level(true))
	assert.Equal(t, Low, Level(false))
	assert.Equal(t, 1, High.Int())
	assert.Equal(t, 0, Low.Int())
}

func TestEdge(t *testing.T) {
	e, ok := Low.Edge(High)
	assert.True(t, ok)
	assert.Equal(t, RisingEdge, e)

	e, ok = High.Edge(Low)
	assert.True(t, ok)
	assert.Equal(t, FallingEdge, e)

	_, ok = High.Edge(High)
	assert.False(t, ok)

	e, ok = Invalid.Edge(Low)
	assert.True(t, ok)
	assert.Equal(t, FallingEdge, e)
	assert.Equal(t, "falling", e.String())
}
