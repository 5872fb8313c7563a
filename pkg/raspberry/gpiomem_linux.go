//go:build linux

package raspberry

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpio"
)

// RpiPin is an output line driven through the memory mapped gpio registers.
type RpiPin struct {
	gpioPin *gpio.Pin
	owner   *RpiGPIO
	level   bool
}

// RpiGPIO is the memory mapped gpio backend.
type RpiGPIO struct {
	sync.Mutex
	pins map[int]*RpiPin
}

// openMem maps the GPIO memory range from /dev/gpiomem.
func openMem() (GPIO, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &RpiGPIO{pins: map[int]*RpiPin{}}, nil
}

// Close drives all pins low and unmaps GPIO memory.
func (c *RpiGPIO) Close() (err error) {
	c.Lock()
	for n, p := range c.pins {
		p.gpioPin.Low()
		delete(c.pins, n)
	}
	c.Unlock()
	return gpio.Close()
}

// NewPin creates a new output pin object.
func (c *RpiGPIO) NewPin(p int) (Pin, error) {
	c.Lock()
	defer c.Unlock()

	if _, ok := c.pins[p]; ok {
		return nil, fmt.Errorf("%w: %v", ErrPinInUse, p)
	}

	l := &RpiPin{gpioPin: gpio.NewPin(p), owner: c}
	l.gpioPin.Low()
	l.gpioPin.Output()
	c.pins[p] = l
	return l, nil
}

// Write sets the pin high or low.
func (p *RpiPin) Write(level bool) {
	p.gpioPin.Write(gpio.Level(level))
	p.level = level
}

// Read returns the level written last.
func (p *RpiPin) Read() bool {
	return p.level
}

// Pin returns the pin number that this Pin represents.
func (p *RpiPin) Pin() int {
	return p.gpioPin.Pin()
}

// Close drives the pin low, switches it back to input and releases it.
func (p *RpiPin) Close() error {
	p.gpioPin.Low()
	p.gpioPin.Input()

	p.owner.Lock()
	delete(p.owner.pins, p.Pin())
	p.owner.Unlock()
	return nil
}
