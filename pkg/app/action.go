package app

import (
	"fmt"
	"strings"

	"ledseq/pkg/sequence"
)

// parseAction converts the textual form of a command as used by mqtt messages
// and schedules.
//  on | off | toggle | stop | status
//  start <sequence name>
//  play <ms>:<state> [<ms>:<state> ...]
func parseAction(text string) (command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return command{}, fmt.Errorf("%w: empty action", ErrUnknownAction)
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "on", "off", "toggle", "stop", "status":
		if len(args) > 0 {
			return command{}, fmt.Errorf("%w: %q takes no arguments", ErrUnknownAction, verb)
		}
	}

	switch verb {
	case "on":
		return command{action: actionOn}, nil
	case "off":
		return command{action: actionOff}, nil
	case "toggle":
		return command{action: actionToggle}, nil
	case "stop":
		return command{action: actionStop}, nil
	case "status":
		return command{action: actionStatus}, nil
	case "start":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%w: start needs one sequence name", ErrUnknownAction)
		}
		return command{action: actionStart, name: args[0]}, nil
	case "play":
		s, err := sequence.Parse(strings.Join(args, " "))
		if err != nil {
			return command{}, err
		}
		return command{action: actionPlay, seq: s}, nil
	default:
		return command{}, fmt.Errorf("%w %q", ErrUnknownAction, verb)
	}
}
