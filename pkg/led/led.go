// Package led drives a two-state output through timed sequences without blocking.
//
// The Driver never sleeps and owns no goroutine. The host calls Poll (or
// Update) on every iteration of its control loop, and the driver advances the
// running sequence when the current step has expired.
//
// A Driver is not safe for concurrent use. Hosts that touch a driver from more
// than one goroutine must serialize the calls themselves.
package led

import (
	"fmt"

	"ledseq/pkg/clock"
	"ledseq/pkg/sequence"
)

// Output is the physical sink of the driver, e.g. a gpio line.
// Write must not block and is assumed to succeed.
type Output interface {
	Write(level bool)
}

// OutputFunc adapts a function to the Output interface.
type OutputFunc func(level bool)

func (f OutputFunc) Write(level bool) { f(level) }

// Polarity maps the logical state to the physical level.
type Polarity int

const (
	// ActiveHigh writes a high level to switch the output on.
	ActiveHigh Polarity = iota
	// ActiveLow writes a low level to switch the output on.
	ActiveLow
)

func (p Polarity) String() string {
	if p == ActiveLow {
		return "active-low"
	}
	return "active-high"
}

// level returns the physical level for the logical state on.
func (p Polarity) level(on bool) bool {
	if p == ActiveLow {
		return !on
	}
	return on
}

// Driver is the sequencer state machine of one output.
type Driver struct {
	out      Output
	polarity Polarity
	clock    clock.Source

	// state is the last logical state written to out.
	state bool
	// playing is true while a sequence advances autonomously.
	playing bool
	// seq is the sequence started last, index the current step in seq.
	seq   sequence.Sequence
	index int
	// last is the time of the last step change.
	last clock.Millis
}

// New binds a driver to out and switches the output off.
func New(out Output, p Polarity, c clock.Source) *Driver {
	d := &Driver{out: out, polarity: p, clock: c}
	d.Off()
	return d
}

// State returns the logical output state. It does not touch the hardware.
func (d *Driver) State() bool {
	return d.state
}

// On switches the output on. The level is written on every call.
func (d *Driver) On() {
	d.set(true)
}

// Off switches the output off. The level is written on every call.
func (d *Driver) Off() {
	d.set(false)
}

// Toggle inverts the output state.
func (d *Driver) Toggle() {
	if d.state {
		d.Off()
		return
	}
	d.On()
}

func (d *Driver) set(on bool) {
	d.out.Write(d.polarity.level(on))
	d.state = on
}

// Start plays seq from its first step.
//  The state of step 0 is written immediately, the step expires after its
//  duration measured from now. A running sequence is replaced.
func (d *Driver) Start(seq sequence.Sequence) error {
	if seq.Len() == 0 {
		return fmt.Errorf("start: %w: no steps", sequence.ErrInvalidSequence)
	}

	d.seq = seq
	d.index = 0
	d.last = d.clock.Now()
	d.playing = true
	d.set(seq.Step(0).State)
	return nil
}

// Stop ends the running sequence and switches the output off.
func (d *Driver) Stop() {
	d.playing = false
	d.Off()
}

// Hold ends the running sequence and keeps the output at its current level.
// A manual On, Off or Toggle after Hold is not overridden by the next Poll.
func (d *Driver) Hold() {
	d.playing = false
}

// Poll advances the running sequence if the current step has expired at now.
//  At most one step is advanced per call. Time beyond the expired step is not
//  carried over, so a slowly polled sequence stretches instead of skipping steps.
//  Poll reports whether a step change happened.
func (d *Driver) Poll(now clock.Millis) bool {
	if !d.playing {
		return false
	}

	if now.Since(d.last) < d.seq.Step(d.index).Duration {
		return false
	}

	d.last = now
	d.index++
	if d.index >= d.seq.Len() {
		d.index = 0
	}

	d.set(d.seq.Step(d.index).State)
	return true
}

// Update polls the driver with the current time of its clock.
func (d *Driver) Update() bool {
	return d.Poll(d.clock.Now())
}

// Playing reports whether a sequence is running.
func (d *Driver) Playing() bool {
	return d.playing
}

// Index returns the current step of the running sequence.
func (d *Driver) Index() int {
	return d.index
}

// Sequence returns the sequence started last.
func (d *Driver) Sequence() sequence.Sequence {
	return d.seq
}

// Polarity returns the polarity the driver was built with.
func (d *Driver) Polarity() Polarity {
	return d.polarity
}
