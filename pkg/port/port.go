// Package port holds the definition of a physical output port
package port

import "time"

// EventType indicates the type of change of the line level.
//
// Note that for active low outputs a falling edge switches the output on.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates a low to high level change.
	RisingEdge
	// FallingEdge indicates a high to low level change.
	FallingEdge
)

func (e EventType) String() string {
	switch e {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "none"
	}
}

// Event is a level change written to a port.
type Event struct {
	// Timestamp indicates the time the level was written, relative to the opening of the port.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)

// Level converts a boolean level to a StateType.
func Level(high bool) StateType {
	if high {
		return High
	}
	return Low
}

// Edge returns the event type of a change from s to next.
// The second return value is false if the level doesn't change.
func (s StateType) Edge(next StateType) (EventType, bool) {
	switch {
	case s == next:
		return 0, false
	case next == High:
		return RisingEdge, true
	case next == Low:
		return FallingEdge, true
	default:
		return 0, false
	}
}

// Int returns the line value as used by the gpio character device.
func (s StateType) Int() int {
	if s == High {
		return 1
	}
	return 0
}
