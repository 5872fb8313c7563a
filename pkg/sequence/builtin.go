package sequence

const (
	dot  = 200
	dash = 600
	gap  = 200
)

// Builtin returns the named sequences every installation knows about.
// Each call returns a new map, the caller may add or replace entries.
func Builtin() map[string]Sequence {
	return map[string]Sequence{
		"blink":     Must(Step{500, true}, Step{500, false}),
		"fastblink": Must(Step{100, true}, Step{100, false}),
		"alternate": Must(Step{250, true}, Step{250, false}),
		// two short pulses followed by a long pause
		"heartbeat": Must(Step{100, true}, Step{100, false}, Step{100, true}, Step{700, false}),
		"sos": Must(
			Step{dot, true}, Step{gap, false}, Step{dot, true}, Step{gap, false}, Step{dot, true}, Step{3 * gap, false},
			Step{dash, true}, Step{gap, false}, Step{dash, true}, Step{gap, false}, Step{dash, true}, Step{3 * gap, false},
			Step{dot, true}, Step{gap, false}, Step{dot, true}, Step{gap, false}, Step{dot, true}, Step{7 * gap, false},
		),
	}
}
