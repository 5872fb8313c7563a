// Package clock provides the millisecond time base of the sequencer.
//
// Millis behaves like the free running millisecond counter of a
// microcontroller: it is an unsigned 32 bit value which wraps to zero after
// about 49.7 days. Elapsed time must always be computed with Since, which uses
// modular subtraction and therefore stays correct across a wraparound.
package clock

import (
	"sync"
	"time"
)

// Millis is a wrapping millisecond timestamp.
type Millis uint32

// Since returns the time elapsed from earlier to m.
//  The unsigned subtraction yields the correct small value even if the
//  counter wrapped between earlier and m.
func (m Millis) Since(earlier Millis) Millis {
	return m - earlier
}

// Duration converts m to a time.Duration.
func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// FromDuration converts d to Millis, truncating to whole milliseconds.
func FromDuration(d time.Duration) Millis {
	return Millis(uint32(d / time.Millisecond))
}

// Source is a monotonic, non-decreasing (modulo wraparound) millisecond counter.
type Source interface {
	Now() Millis
}

// System is a Source backed by the monotonic clock of the host.
type System struct {
	start  time.Time
	offset Millis
}

// NewSystem returns a System clock starting at zero.
func NewSystem() *System {
	return NewSystemAt(0)
}

// NewSystemAt returns a System clock whose first reading is offset.
// A large offset moves the first wraparound close to the start of the process.
func NewSystemAt(offset Millis) *System {
	return &System{start: time.Now(), offset: offset}
}

// Now returns the milliseconds since the clock was created plus the offset.
func (s *System) Now() Millis {
	return s.offset + FromDuration(time.Since(s.start))
}

// Manual is a Source which only moves when told to.
type Manual struct {
	sync.Mutex
	now Millis
}

// NewManual returns a Manual clock set to now.
func NewManual(now Millis) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() Millis {
	m.Lock()
	defer m.Unlock()
	return m.now
}

// Set moves the clock to now.
func (m *Manual) Set(now Millis) {
	m.Lock()
	m.now = now
	m.Unlock()
}

// Advance moves the clock forward by d and returns the new reading.
func (m *Manual) Advance(d Millis) Millis {
	m.Lock()
	defer m.Unlock()
	m.now += d
	return m.now
}
