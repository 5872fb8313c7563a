//go:build linux

package raspberry

import (
	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"ledseq/pkg/port"
)

const consumer = "ledseq"

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested output line.
type Line struct {
	gpiodLine *gpiod.Line
	offset    int
	level     bool
}

// openChip opens a GPIO character device.
func openChip(name string) (GPIO, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewPin requests control of a single line on a chip as output, driven low.
//   If granted, control is maintained until the Line is closed.
func (c *Chip) NewPin(offset int) (Pin, error) {
	l, err := c.gpiodChip.RequestLine(offset, gpiod.AsOutput(port.Low.Int()))
	if err != nil {
		return nil, err
	}
	return &Line{gpiodLine: l, offset: offset}, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Write sets the line value.
// A failing write is logged, the sequencer treats the output as write only.
func (l *Line) Write(level bool) {
	if err := l.gpiodLine.SetValue(port.Level(level).Int()); err != nil {
		debug.ErrorLog.Printf("set value of line %v: %v", l.offset, err)
		return
	}
	l.level = level
}

// Read returns the level written last.
func (l *Line) Read() bool {
	return l.level
}

// Pin returns the line offset.
func (l *Line) Pin() int {
	return l.offset
}

// Close releases all resources held by the requested line.
func (l *Line) Close() error {
	return l.gpiodLine.Close()
}
