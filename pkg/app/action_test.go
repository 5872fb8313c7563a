package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledseq/pkg/sequence"
)

func TestParseAction(t *testing.T) {
	for text, want := range map[string]actionType{
		"on":      actionOn,
		" OFF ":   actionOff,
		"toggle":  actionToggle,
		"stop":    actionStop,
		"status":  actionStatus,
		"start x": actionStart,
	} {
		c, err := parseAction(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, c.action, text)
	}

	c, err := parseAction("start heartbeat")
	require.NoError(t, err)
	assert.Equal(t, "heartbeat", c.name)

	c, err = parseAction("play 100:on 200:off")
	require.NoError(t, err)
	assert.Equal(t, actionPlay, c.action)
	assert.Equal(t, 2, c.seq.Len())
}

func TestParseAction_Errors(t *testing.T) {
	for _, text := range []string{"", "dance", "on now", "start", "start a b"} {
		_, err := parseAction(text)
		assert.ErrorIs(t, err, ErrUnknownAction, text)
	}

	_, err := parseAction("play 100:on 0:off")
	assert.ErrorIs(t, err, sequence.ErrInvalidSequence)
}

func TestChannelFromTopic(t *testing.T) {
	name, ok := channelFromTopic("ledseq", "ledseq/porch/set")
	assert.True(t, ok)
	assert.Equal(t, "porch", name)

	for _, topic := range []string{"ledseq/porch/state", "other/porch/set", "ledseq//set", "ledseq/a/b/set", "ledseq"} {
		_, ok = channelFromTopic("ledseq", topic)
		assert.False(t, ok, topic)
	}
}
