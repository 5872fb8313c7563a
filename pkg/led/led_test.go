package led

import (
	"math"
	"testing"

	"ledseq/pkg/clock"
	"ledseq/pkg/sequence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects every physical level written by the driver.
type recorder struct {
	levels []bool
}

func (r *recorder) Write(level bool) {
	r.levels = append(r.levels, level)
}

func (r *recorder) last() bool {
	return r.levels[len(r.levels)-1]
}

func newDriver(p Polarity, now clock.Millis) (*Driver, *recorder, *clock.Manual) {
	r := &recorder{}
	c := clock.NewManual(now)
	return New(r, p, c), r, c
}

func scenario() sequence.Sequence {
	return sequence.Must(
		sequence.Step{Duration: 100, State: true},
		sequence.Step{Duration: 200, State: false},
		sequence.Step{Duration: 50, State: true},
	)
}

func TestNew_WritesOff(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)
	assert.Equal(t, []bool{false}, r.levels)
	assert.False(t, d.State())
	assert.False(t, d.Playing())

	_, r, _ = newDriver(ActiveLow, 0)
	assert.Equal(t, []bool{true}, r.levels)
}

func TestOnOffToggle(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)

	d.On()
	d.On()
	assert.True(t, d.State())
	assert.Equal(t, []bool{false, true, true}, r.levels, "repeated calls must write again")

	d.Toggle()
	assert.False(t, d.State())
	d.Toggle()
	assert.True(t, d.State())
	d.Off()
	assert.Equal(t, []bool{false, true, true, false, true, false}, r.levels)
}

func TestPolarity_ActiveLow(t *testing.T) {
	d, r, _ := newDriver(ActiveLow, 0)

	d.On()
	assert.False(t, r.last(), "on must write a low level")
	assert.True(t, d.State())

	d.Off()
	assert.True(t, r.last())
	assert.False(t, d.State())
}

func TestStart_AssertsFirstStep(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)

	require.NoError(t, d.Start(scenario()))
	assert.True(t, d.Playing())
	assert.True(t, d.State())
	assert.True(t, r.last())
	assert.Equal(t, 0, d.Index())

	off := sequence.Must(sequence.Step{Duration: 10, State: false})
	require.NoError(t, d.Start(off))
	assert.False(t, d.State())
}

func TestStart_RejectsEmptySequence(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)

	err := d.Start(sequence.Sequence{})
	assert.ErrorIs(t, err, sequence.ErrInvalidSequence)
	assert.False(t, d.Playing())
	assert.Len(t, r.levels, 1)
}

func TestPoll_Scenario(t *testing.T) {
	d, _, _ := newDriver(ActiveHigh, 0)
	require.NoError(t, d.Start(scenario()))

	assert.False(t, d.Poll(50))
	assert.True(t, d.State())
	assert.Equal(t, 0, d.Index())

	assert.True(t, d.Poll(150))
	assert.False(t, d.State())
	assert.Equal(t, 1, d.Index())

	assert.False(t, d.Poll(340))
	assert.False(t, d.State())
	assert.Equal(t, 1, d.Index())

	assert.True(t, d.Poll(360))
	assert.True(t, d.State())
	assert.Equal(t, 2, d.Index())

	// step 2 lasts 50ms measured from 360
	assert.False(t, d.Poll(409))
	assert.True(t, d.Poll(410))
	assert.Equal(t, 0, d.Index())
}

func TestPoll_OneAdvancePerCall(t *testing.T) {
	d, _, _ := newDriver(ActiveHigh, 0)
	require.NoError(t, d.Start(scenario()))

	// far more than a full period has passed
	assert.True(t, d.Poll(10_000))
	assert.Equal(t, 1, d.Index())
	assert.False(t, d.Poll(10_001))
	assert.Equal(t, 1, d.Index())
}

func TestPoll_Ring(t *testing.T) {
	d, _, _ := newDriver(ActiveHigh, 0)
	s := scenario()
	require.NoError(t, d.Start(s))

	now := clock.Millis(0)
	for i := 0; i < s.Len(); i++ {
		now += s.Step(d.Index()).Duration
		require.True(t, d.Poll(now))
	}

	assert.Equal(t, 0, d.Index())
	assert.Equal(t, s.Step(0).State, d.State())
}

func TestPoll_SameStateSteps(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)
	require.NoError(t, d.Start(sequence.Must(
		sequence.Step{Duration: 10, State: true},
		sequence.Step{Duration: 10, State: true},
		sequence.Step{Duration: 10, State: false},
	)))

	assert.True(t, d.Poll(10))
	assert.True(t, d.State())
	assert.Equal(t, 1, d.Index())
	assert.Equal(t, []bool{false, true, true}, r.levels)
}

func TestPoll_Idle(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)
	d.On()

	assert.False(t, d.Poll(1_000_000))
	assert.True(t, d.State(), "idle driver holds the last commanded level")
	assert.Len(t, r.levels, 2)
}

func TestPoll_Wraparound(t *testing.T) {
	start := clock.Millis(math.MaxUint32 - 40)
	d, _, _ := newDriver(ActiveHigh, start)
	require.NoError(t, d.Start(scenario()))

	// 100ms after start the counter has wrapped to 59
	assert.False(t, d.Poll(58))
	assert.Equal(t, 0, d.Index())
	assert.True(t, d.Poll(59))
	assert.Equal(t, 1, d.Index())
	assert.False(t, d.State())
}

func TestStop(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)
	require.NoError(t, d.Start(scenario()))

	d.Stop()
	assert.False(t, d.Playing())
	assert.False(t, d.State())
	assert.False(t, r.last())

	d.Stop()
	assert.False(t, d.Playing())
	assert.False(t, d.State())

	assert.False(t, d.Poll(10_000))
	assert.False(t, d.State())
}

func TestStop_ActiveLow(t *testing.T) {
	d, r, _ := newDriver(ActiveLow, 0)
	require.NoError(t, d.Start(scenario()))
	assert.False(t, r.last())

	d.Stop()
	assert.False(t, d.State())
	assert.True(t, r.last())
}

func TestUpdate_UsesClock(t *testing.T) {
	d, _, c := newDriver(ActiveHigh, 1000)
	require.NoError(t, d.Start(scenario()))

	c.Advance(99)
	assert.False(t, d.Update())
	c.Advance(1)
	assert.True(t, d.Update())
	assert.Equal(t, 1, d.Index())
}

func TestOutputFunc(t *testing.T) {
	var got []bool
	d := New(OutputFunc(func(l bool) { got = append(got, l) }), ActiveHigh, clock.NewManual(0))
	d.Toggle()
	assert.Equal(t, []bool{false, true}, got)
	assert.Equal(t, "active-high", d.Polarity().String())
	assert.Equal(t, "active-low", ActiveLow.String())
}

func TestHold(t *testing.T) {
	d, r, _ := newDriver(ActiveHigh, 0)
	require.NoError(t, d.Start(scenario()))
	writes := len(r.levels)

	d.Hold()
	assert.False(t, d.Playing())
	assert.True(t, d.State())
	assert.Len(t, r.levels, writes, "hold must not write")

	assert.False(t, d.Poll(10_000))
	assert.True(t, d.State())
}
