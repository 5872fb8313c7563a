// Package raspberry provides the gpio output lines of a raspberry pi.
//
// Three backends are available:
//  gpiomem  memory mapped registers from /dev/gpiomem (github.com/warthog618/gpio)
//  gpiod    the gpio character device, e.g. /dev/gpiochip0 (github.com/warthog618/gpiod)
//  emu      an in-memory emulation which records every level change
package raspberry

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrPinInUse     = errors.New("pin already used")
	ErrUnsupported  = errors.New("gpio backend not supported on this platform")
)

const (
	DriverGpioMem = "gpiomem"
	DriverGpiod   = "gpiod"
	DriverEmu     = "emu"
)

// Pin is a single output line.
type Pin interface {
	// Write sets the physical level of the line, true is high.
	Write(level bool)
	// Read returns the level written last.
	Read() bool
	// Pin returns the pin number that this Pin represents.
	Pin() int
	// Close releases the line.
	Close() error
}

// GPIO is a set of output lines.
type GPIO interface {
	// NewPin requests pin p as an output driven low.
	// The pin number provided is the BCM GPIO number.
	NewPin(p int) (Pin, error)
	// Close releases the backend and all requested pins.
	Close() error
}

// Open opens the gpio backend driver.
// chip is the name of the character device and only used by the gpiod backend.
func Open(driver, chip string) (GPIO, error) {
	switch driver {
	case DriverGpioMem:
		return openMem()
	case DriverGpiod:
		if chip == "" {
			chip = "gpiochip0"
		}
		return openChip(chip)
	case DriverEmu:
		return OpenEmu(), nil
	default:
		return nil, fmt.Errorf("%w: unknown gpio driver %q", ErrInvalidParam, driver)
	}
}
