package app

import (
	"fmt"
	"time"

	"github.com/womat/debug"

	"ledseq/pkg/sequence"
)

// actionType is the operation requested by a command.
type actionType int

const (
	actionStatus actionType = iota
	actionOn
	actionOff
	actionToggle
	actionStop
	actionStart
	actionPlay
	actionReload
	actionSequences
)

var actionNames = map[actionType]string{
	actionStatus:    "status",
	actionOn:        "on",
	actionOff:       "off",
	actionToggle:    "toggle",
	actionStop:      "stop",
	actionStart:     "start",
	actionPlay:      "play",
	actionReload:    "reload",
	actionSequences: "sequences",
}

func (a actionType) String() string {
	return actionNames[a]
}

// command is executed by the control loop.
type command struct {
	// channel is the target channel, empty addresses all channels (status only).
	channel string
	action  actionType
	// name is the sequence name of actionStart.
	name string
	// seq is the sequence of actionPlay.
	seq sequence.Sequence
	// library replaces the named sequences on actionReload.
	library map[string]sequence.Sequence
	// source names the origin of the command (web|mqtt|cron|config).
	source string
	reply  chan result
}

type result struct {
	status []Status
	// sequences holds the textual form of the library for actionSequences.
	sequences map[string]string
	err       error
}

// Status is the state of a channel as reported by the web services and mqtt.
type Status struct {
	Channel  string    `json:"channel"`
	Gpio     int       `json:"gpio"`
	On       bool      `json:"on"`
	Playing  bool      `json:"playing"`
	Sequence string    `json:"sequence,omitempty"`
	Steps    string    `json:"steps,omitempty"`
	Index    int       `json:"index"`
	Polarity string    `json:"polarity"`
	Time     time.Time `json:"time"`
}

func (app *App) startLoop() {
	app.running = true
	go app.runLoop()
}

// runLoop is the control loop. It is the only goroutine touching the led drivers.
// On every tick each driver is polled, commands are executed between two ticks.
func (app *App) runLoop() {
	defer close(app.loopDone)

	t := time.NewTicker(app.config.PollInterval)
	defer t.Stop()

	debug.InfoLog.Printf("control loop started, poll interval %v", app.config.PollInterval)
	for {
		select {
		case <-app.shutdown:
			debug.InfoLog.Print("control loop stopped")
			return
		case c := <-app.cmd:
			c.reply <- app.exec(c)
		case <-t.C:
			app.poll()
		}
	}
}

// do sends c to the control loop and waits for the result.
func (app *App) do(c command) result {
	c.reply = make(chan result, 1)

	select {
	case app.cmd <- c:
	case <-app.shutdown:
		return result{err: ErrClosed}
	}

	return <-c.reply
}

// poll advances all running sequences.
func (app *App) poll() {
	now := app.clock.Now()
	for _, ch := range app.channels {
		before := ch.driver.State()
		if !ch.driver.Poll(now) {
			continue
		}

		transitionsTotal.WithLabelValues(ch.name).Inc()
		if ch.driver.State() != before {
			app.changed(ch)
		}
	}
}

// exec runs a single command inside the control loop.
func (app *App) exec(c command) result {
	commandsTotal.WithLabelValues(c.source, c.action.String()).Inc()
	debug.DebugLog.Printf("%v command %v on channel %q", c.source, c.action, c.channel)

	switch c.action {
	case actionReload:
		app.library = c.library
		debug.InfoLog.Printf("%v sequences loaded", len(app.library))
		return result{}
	case actionSequences:
		m := make(map[string]string, len(app.library))
		for name, seq := range app.library {
			m[name] = seq.String()
		}
		return result{sequences: m}
	case actionStatus:
		if c.channel == "" {
			s := make([]Status, 0, len(app.channels))
			for _, ch := range app.channels {
				s = append(s, app.status(ch))
			}
			return result{status: s}
		}
	}

	ch, ok := app.byName[c.channel]
	if !ok {
		return result{err: fmt.Errorf("%w %q", ErrUnknownChannel, c.channel)}
	}

	on, playing := ch.driver.State(), ch.driver.Playing()

	var err error
	switch c.action {
	case actionStatus:
		// a status request over mqtt is answered on the state topic
		if c.source == sourceMQTT {
			app.publishState(ch)
		}
	case actionOn:
		ch.driver.Hold()
		ch.driver.On()
	case actionOff:
		ch.driver.Hold()
		ch.driver.Off()
	case actionToggle:
		ch.driver.Hold()
		ch.driver.Toggle()
	case actionStop:
		ch.driver.Stop()
	case actionStart:
		err = app.start(ch, c.name)
	case actionPlay:
		if err = ch.driver.Start(c.seq); err == nil {
			ch.sequence = ""
		}
	default:
		err = fmt.Errorf("%w %v", ErrUnknownAction, c.action)
	}

	if err != nil {
		return result{err: err}
	}

	if ch.driver.State() != on || ch.driver.Playing() != playing || c.action == actionStart || c.action == actionPlay {
		app.changed(ch)
	}
	return result{status: []Status{app.status(ch)}}
}

// start plays the named sequence of the library on ch.
func (app *App) start(ch *channel, name string) error {
	s, ok := app.library[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownSequence, name)
	}

	if err := ch.driver.Start(s); err != nil {
		return err
	}

	ch.sequence = name
	return nil
}

// changed reports a new state of ch to the metrics and the mqtt broker.
func (app *App) changed(ch *channel) {
	updateMetrics(ch)
	app.publishState(ch)
}

func (app *App) status(ch *channel) Status {
	s := Status{
		Channel:  ch.name,
		Gpio:     ch.gpio,
		On:       ch.driver.State(),
		Playing:  ch.driver.Playing(),
		Polarity: ch.driver.Polarity().String(),
		Time:     time.Now(),
	}

	if s.Playing {
		s.Sequence = ch.sequence
		s.Steps = ch.driver.Sequence().String()
		s.Index = ch.driver.Index()
	}
	return s
}
