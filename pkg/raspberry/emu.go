package raspberry

import (
	"fmt"
	"sync"
	"time"

	"github.com/womat/debug"

	"ledseq/pkg/port"
)

// EmuPin is an emulated output line, it records every level change.
type EmuPin struct {
	gpioPin int
	owner   *EmuGPIO
	state   port.StateType
	events  []port.Event
	writes  int
}

// EmuGPIO emulates gpio output lines on hosts without gpio hardware.
type EmuGPIO struct {
	sync.Mutex
	start time.Time
	pins  map[int]*EmuPin
}

// OpenEmu opens an emulated gpio backend.
func OpenEmu() *EmuGPIO {
	return &EmuGPIO{start: time.Now(), pins: map[int]*EmuPin{}}
}

// Close releases all emulated pins.
func (c *EmuGPIO) Close() error {
	c.Lock()
	c.pins = map[int]*EmuPin{}
	c.Unlock()
	return nil
}

// NewPin creates a new pin object, the level is low.
func (c *EmuGPIO) NewPin(p int) (Pin, error) {
	c.Lock()
	defer c.Unlock()

	if _, ok := c.pins[p]; ok {
		return nil, fmt.Errorf("%w: %v", ErrPinInUse, p)
	}

	l := &EmuPin{gpioPin: p, owner: c, state: port.Low}
	c.pins[p] = l
	return l, nil
}

// Lookup returns the requested pin p.
func (c *EmuGPIO) Lookup(p int) (*EmuPin, bool) {
	c.Lock()
	defer c.Unlock()
	l, ok := c.pins[p]
	return l, ok
}

// Write records the level and emits an edge event if the level changed.
func (p *EmuPin) Write(level bool) {
	p.owner.Lock()
	defer p.owner.Unlock()

	next := port.Level(level)
	p.writes++
	if e, ok := p.state.Edge(next); ok {
		p.events = append(p.events, port.Event{Timestamp: time.Since(p.owner.start), Type: e})
		debug.TraceLog.Printf("emulated pin %v: %v edge", p.gpioPin, e)
	}
	p.state = next
}

// Read returns the level written last.
func (p *EmuPin) Read() bool {
	p.owner.Lock()
	defer p.owner.Unlock()
	return p.state == port.High
}

// Pin returns the pin number that this Pin represents.
func (p *EmuPin) Pin() int {
	return p.gpioPin
}

// Events returns a copy of the recorded edges.
func (p *EmuPin) Events() []port.Event {
	p.owner.Lock()
	defer p.owner.Unlock()
	e := make([]port.Event, len(p.events))
	copy(e, p.events)
	return e
}

// Writes returns the number of writes, including writes without a level change.
func (p *EmuPin) Writes() int {
	p.owner.Lock()
	defer p.owner.Unlock()
	return p.writes
}

// Close releases the pin.
func (p *EmuPin) Close() error {
	p.owner.Lock()
	delete(p.owner.pins, p.gpioPin)
	p.owner.Unlock()
	return nil
}
