package app

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"github.com/womat/debug"

	"ledseq/pkg/app/config"
	"ledseq/pkg/clock"
	"ledseq/pkg/led"
	"ledseq/pkg/mqtt"
	"ledseq/pkg/raspberry"
	"ledseq/pkg/sequence"
)

var (
	ErrUnknownChannel  = errors.New("unknown channel")
	ErrUnknownSequence = errors.New("unknown sequence")
	ErrUnknownAction   = errors.New("unknown action")
	ErrClosed          = errors.New("application closed")
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// gpio is the handler to the gpio output lines
	gpio raspberry.GPIO

	// clock is the time base of all led drivers
	clock clock.Source

	// channels and library are owned by the control loop (runLoop) once it runs.
	channels []*channel
	byName   map[string]*channel
	library  map[string]sequence.Sequence

	// cmd transfers commands to the control loop
	cmd chan command

	cron    *cron.Cron
	watcher *fsnotify.Watcher

	// shutdown signals application shutdown
	shutdown   chan struct{}
	closeOnce  sync.Once
	running    bool
	webRunning bool
	loopDone   chan struct{}
}

// channel is an output line with its sequencer.
type channel struct {
	name   string
	gpio   int
	pin    raspberry.Pin
	driver *led.Driver
	// sequence is the name of the sequence started last
	sequence string
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:   fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:  mqtt.New(),
		clock: clock.NewSystem(),

		byName:   map[string]*channel{},
		cmd:      make(chan command),
		cron:     cron.New(),
		shutdown: make(chan struct{}),
		loopDone: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	app.startLoop()
	app.webRunning = true
	go app.runWebServer()
	app.cron.Start()

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if app.library, err = app.config.Library(); err != nil {
		debug.ErrorLog.Printf("can't load sequences: %v", err)
		return err
	}

	if app.gpio, err = raspberry.Open(app.config.Gpio.Driver, app.config.Gpio.Chip); err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}

	for _, c := range app.config.Channels {
		if err = app.addChannel(c); err != nil {
			debug.ErrorLog.Printf("can't open channel %q: %v", c.Name, err)
			return err
		}
	}

	if err = app.mqtt.Connect(mqtt.Options{
		Broker:   app.config.MQTT.Connection,
		ClientID: app.config.MQTT.ClientID,
		Username: app.config.MQTT.Username,
		Password: app.config.MQTT.Password,
	}); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}
	app.subscribeMQTT()

	if err = app.initSchedules(); err != nil {
		debug.ErrorLog.Printf("can't add schedule: %v", err)
		return err
	}

	if app.config.Watch {
		if err = app.watchConfig(); err != nil {
			debug.ErrorLog.Printf("can't watch config file: %v", err)
			return err
		}
	}

	// initDefaultRoutes should be always called last because handlers may access things
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// addChannel requests the output line of c and autostarts its sequence.
func (app *App) addChannel(c config.ChannelConfig) error {
	pin, err := app.gpio.NewPin(c.Gpio)
	if err != nil {
		return err
	}

	p := led.ActiveHigh
	if c.ActiveLow {
		p = led.ActiveLow
	}

	ch := &channel{name: c.Name, gpio: c.Gpio, pin: pin, driver: led.New(pin, p, app.clock)}
	app.channels = append(app.channels, ch)
	app.byName[c.Name] = ch
	debug.InfoLog.Printf("channel %q on gpio %v (%v)", c.Name, c.Gpio, p)

	if c.Sequence != "" {
		if err = app.start(ch, c.Sequence); err != nil {
			return fmt.Errorf("autostart: %w", err)
		}
	}
	updateMetrics(ch)
	return nil
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/ledseq.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close stops the control loop, switches all outputs off and releases the resources.
func (app *App) Close() error {
	app.closeOnce.Do(func() {
		if app.shutdown != nil {
			close(app.shutdown)
		}
	})

	if app.cron != nil {
		<-app.cron.Stop().Done()
	}
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.webRunning {
		_ = app.web.Shutdown()
	}
	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	// the loop must be gone before the drivers are touched from this goroutine
	if app.running {
		<-app.loopDone
		app.running = false
	}

	for _, ch := range app.channels {
		ch.driver.Stop()
		_ = ch.pin.Close()
	}
	app.channels = nil

	if app.gpio != nil {
		return app.gpio.Close()
	}
	return nil
}
