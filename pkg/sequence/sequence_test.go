package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(Step{100, true}, Step{200, false}, Step{50, true})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, Step{200, false}, s.Step(1))
	assert.EqualValues(t, 350, s.Period())
}

func TestNew_Rejects(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrInvalidSequence)

	_, err = New(Step{100, true}, Step{0, false})
	assert.ErrorIs(t, err, ErrInvalidSequence)
}

func TestNew_CopiesSteps(t *testing.T) {
	steps := []Step{{100, true}, {200, false}}
	s, err := New(steps...)
	require.NoError(t, err)

	steps[0].State = false
	assert.True(t, s.Step(0).State)

	out := s.Steps()
	out[1].Duration = 1
	assert.EqualValues(t, 200, s.Step(1).Duration)
}

func TestFromMillis(t *testing.T) {
	s, err := FromMillis([]int{100, 200}, []bool{true, false})
	require.NoError(t, err)
	assert.Equal(t, "100:on 200:off", s.String())

	_, err = FromMillis([]int{100, -5}, []bool{true, false})
	assert.ErrorIs(t, err, ErrInvalidSequence)

	_, err = FromMillis([]int{100}, []bool{true, false})
	assert.ErrorIs(t, err, ErrInvalidSequence)
}

func TestParse(t *testing.T) {
	s, err := Parse("100:on, 200:OFF\t50:1 25:low")
	require.NoError(t, err)

	assert.Equal(t, []Step{{100, true}, {200, false}, {50, true}, {25, false}}, s.Steps())
}

func TestParse_RoundTrip(t *testing.T) {
	s, err := Parse(Builtin()["heartbeat"].String())
	require.NoError(t, err)
	assert.Equal(t, Builtin()["heartbeat"], s)
}

func TestParse_Errors(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"100",
		"0:on",
		"-10:on",
		"abc:on",
		"100:maybe",
		"4294967296:on",
	} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrInvalidSequence, "input %q", text)
	}
}

func TestBuiltin(t *testing.T) {
	b := Builtin()
	for _, name := range []string{"blink", "fastblink", "alternate", "heartbeat", "sos"} {
		s, ok := b[name]
		require.True(t, ok, name)
		assert.NotZero(t, s.Len(), name)
		assert.True(t, s.Step(0).State, name)
	}

	delete(b, "blink")
	_, ok := Builtin()["blink"]
	assert.True(t, ok)
}
