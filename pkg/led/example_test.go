package led_test

import (
	"fmt"

	"ledseq/pkg/clock"
	"ledseq/pkg/led"
	"ledseq/pkg/sequence"
)

func ExampleDriver() {
	c := clock.NewManual(0)
	out := led.OutputFunc(func(level bool) {})
	d := led.New(out, led.ActiveLow, c)

	blink := sequence.Must(
		sequence.Step{Duration: 100, State: true},
		sequence.Step{Duration: 200, State: false},
	)
	if err := d.Start(blink); err != nil {
		fmt.Println(err)
		return
	}

	// the main loop of the host
	for _, t := range []clock.Millis{50, 100, 250, 300} {
		c.Set(t)
		d.Update()
		fmt.Println(t, d.State(), d.Index())
	}

	// Output:
	// 50 true 0
	// 100 false 1
	// 250 false 1
	// 300 true 0
}
