// Package sequence holds the step tables played by the led driver.
//
// A Sequence is an ordered, non empty ring of steps. Each step holds the
// output state for its duration, after the last step playback continues with
// the first one.
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ledseq/pkg/clock"
)

var (
	// ErrInvalidSequence is returned for empty sequences and steps without a positive duration.
	ErrInvalidSequence = errors.New("invalid sequence")
)

// Step is one entry of a sequence.
type Step struct {
	// Duration is the time to hold State before the next step.
	Duration clock.Millis
	// State is the logical output level during this step.
	State bool
}

// Sequence is an immutable list of steps.
// The zero value is the empty sequence and is rejected by led.Driver.Start.
type Sequence struct {
	steps []Step
}

// New validates and copies steps into a new Sequence.
func New(steps ...Step) (Sequence, error) {
	if len(steps) == 0 {
		return Sequence{}, fmt.Errorf("%w: no steps", ErrInvalidSequence)
	}

	for i, s := range steps {
		if s.Duration == 0 {
			return Sequence{}, fmt.Errorf("%w: step %d has no duration", ErrInvalidSequence, i)
		}
	}

	c := make([]Step, len(steps))
	copy(c, steps)
	return Sequence{steps: c}, nil
}

// Must is like New but panics on an invalid table. It is meant for static tables.
func Must(steps ...Step) Sequence {
	s, err := New(steps...)
	if err != nil {
		panic(err)
	}
	return s
}

// FromMillis builds a sequence from signed millisecond durations as found in config files.
// Zero and negative durations are rejected.
func FromMillis(durations []int, states []bool) (Sequence, error) {
	if len(durations) != len(states) {
		return Sequence{}, fmt.Errorf("%w: %d durations for %d states", ErrInvalidSequence, len(durations), len(states))
	}

	steps := make([]Step, len(durations))
	for i, d := range durations {
		if d <= 0 {
			return Sequence{}, fmt.Errorf("%w: step %d has duration %d", ErrInvalidSequence, i, d)
		}
		steps[i] = Step{Duration: clock.Millis(d), State: states[i]}
	}

	return New(steps...)
}

// Len returns the number of steps.
func (s Sequence) Len() int {
	return len(s.steps)
}

// Step returns step i. It panics if i is out of range.
func (s Sequence) Step(i int) Step {
	return s.steps[i]
}

// Steps returns a copy of all steps.
func (s Sequence) Steps() []Step {
	c := make([]Step, len(s.steps))
	copy(c, s.steps)
	return c
}

// Period returns the time of one full cycle.
func (s Sequence) Period() clock.Millis {
	var p clock.Millis
	for _, st := range s.steps {
		p += st.Duration
	}
	return p
}

// String returns the textual form understood by Parse, e.g. "100:on 200:off".
func (s Sequence) String() string {
	b := strings.Builder{}
	for i, st := range s.steps {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(uint64(st.Duration), 10))
		if st.State {
			b.WriteString(":on")
		} else {
			b.WriteString(":off")
		}
	}
	return b.String()
}

// Parse reads the textual form of a sequence.
//  Steps are separated by white space or commas, each step is <ms>:<state>
//  and state is one of on|off|1|0|true|false|high|low.
//  example: "100:on 200:off 50:on"
func Parse(text string) (Sequence, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	steps := make([]Step, 0, len(fields))
	for _, f := range fields {
		st, err := parseStep(f)
		if err != nil {
			return Sequence{}, err
		}
		steps = append(steps, st)
	}

	return New(steps...)
}

func parseStep(f string) (Step, error) {
	p := strings.SplitN(f, ":", 2)
	if len(p) != 2 {
		return Step{}, fmt.Errorf("%w: step %q is not <ms>:<state>", ErrInvalidSequence, f)
	}

	d, err := strconv.ParseInt(p[0], 10, 64)
	if err != nil || d <= 0 || d > int64(^uint32(0)) {
		return Step{}, fmt.Errorf("%w: step %q has an invalid duration", ErrInvalidSequence, f)
	}

	state, err := ParseState(p[1])
	if err != nil {
		return Step{}, fmt.Errorf("%w: step %q: %v", ErrInvalidSequence, f, err)
	}

	return Step{Duration: clock.Millis(d), State: state}, nil
}

// ParseState converts a textual output state.
func ParseState(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "1", "true", "high":
		return true, nil
	case "off", "0", "false", "low":
		return false, nil
	default:
		return false, fmt.Errorf("unknown state %q", s)
	}
}
