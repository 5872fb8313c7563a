package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/womat/debug"
	"gopkg.in/yaml.v2"

	"ledseq/pkg/sequence"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Gpio            GpioConfig              `yaml:"gpio"`
	PollIntervalInt int                     `yaml:"pollinterval"`
	PollInterval    time.Duration           `yaml:"-"`
	Channels        []ChannelConfig         `yaml:"channels"`
	Sequences       map[string][]StepConfig `yaml:"sequences"`
	Schedules       []ScheduleConfig        `yaml:"schedules"`
	Watch           bool                    `yaml:"watch"`
	Flag            FlagConfig              `yaml:"-"`
	Debug           DebugConfig             `yaml:"debug"`
	Webserver       WebserverConfig         `yaml:"webserver"`
	MQTT            MQTTConfig              `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	LogLevel   string
	ConfigFile string
}

// GpioConfig selects the gpio backend (gpiomem|gpiod|emu).
type GpioConfig struct {
	Driver string `yaml:"driver"`
	Chip   string `yaml:"chip"`
}

// ChannelConfig defines one output driven by a sequencer.
type ChannelConfig struct {
	Name      string `yaml:"name"`
	Gpio      int    `yaml:"gpio"`
	ActiveLow bool   `yaml:"activelow"`
	// Sequence is started when the application starts, empty keeps the output off.
	Sequence string `yaml:"sequence"`
}

// StepConfig is one step of a configured sequence, e.g. {ms: 100, state: on}
type StepConfig struct {
	Ms    int    `yaml:"ms"`
	State string `yaml:"state"`
}

// ScheduleConfig runs Action on Channel at the times given by the cron Spec.
type ScheduleConfig struct {
	Spec    string `yaml:"spec"`
	Channel string `yaml:"channel"`
	Action  string `yaml:"action"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	ClientID   string `yaml:"clientid"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Topic      string `yaml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Gpio:            GpioConfig{Driver: "gpiod", Chip: "gpiochip0"},
		PollIntervalInt: 5,
		Flag:            FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":  true,
				"health":   true,
				"data":     true,
				"channels": true,
				"metrics":  true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "",
			ClientID:   "ledseq",
			Topic:      "ledseq",
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Debug.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	c.PollInterval = time.Duration(c.PollIntervalInt) * time.Millisecond

	return c.validate()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil && err != io.EOF {
		return err
	}

	return nil
}

// validate checks the cross references of the configuration.
func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: pollinterval must be positive", ErrInvalidConfig)
	}

	lib, err := c.Library()
	if err != nil {
		return err
	}

	names := map[string]bool{}
	pins := map[int]bool{}
	for _, ch := range c.Channels {
		switch {
		case ch.Name == "":
			return fmt.Errorf("%w: channel without name", ErrInvalidConfig)
		case names[ch.Name]:
			return fmt.Errorf("%w: duplicate channel %q", ErrInvalidConfig, ch.Name)
		case pins[ch.Gpio]:
			return fmt.Errorf("%w: gpio %v used by more than one channel", ErrInvalidConfig, ch.Gpio)
		}
		if _, ok := lib[ch.Sequence]; ch.Sequence != "" && !ok {
			return fmt.Errorf("%w: channel %q: unknown sequence %q", ErrInvalidConfig, ch.Name, ch.Sequence)
		}
		names[ch.Name] = true
		pins[ch.Gpio] = true
	}

	for _, s := range c.Schedules {
		if _, err := cron.ParseStandard(s.Spec); err != nil {
			return fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, s.Spec, err)
		}
		if !names[s.Channel] {
			return fmt.Errorf("%w: schedule %q: unknown channel %q", ErrInvalidConfig, s.Spec, s.Channel)
		}
	}

	return nil
}

// Library returns the built-in sequences merged with the configured sequences.
// A configured sequence replaces a built-in sequence of the same name.
func (c *Config) Library() (map[string]sequence.Sequence, error) {
	lib := sequence.Builtin()

	for name, steps := range c.Sequences {
		ms := make([]int, len(steps))
		states := make([]bool, len(steps))
		for i, st := range steps {
			on, err := sequence.ParseState(st.State)
			if err != nil {
				return nil, fmt.Errorf("%w: sequence %q step %d: %v", ErrInvalidConfig, name, i, err)
			}
			ms[i] = st.Ms
			states[i] = on
		}

		s, err := sequence.FromMillis(ms, states)
		if err != nil {
			return nil, fmt.Errorf("%w: sequence %q: %v", ErrInvalidConfig, name, err)
		}
		lib[name] = s
	}

	return lib, nil
}

// LoadLibrary reads the sequences of the configuration file fresh from disk.
func LoadLibrary(file string) (map[string]sequence.Sequence, error) {
	c := &Config{Flag: FlagConfig{ConfigFile: file}}
	if err := c.readConfigFile(); err != nil {
		return nil, fmt.Errorf("error reading config file %q: %w", file, err)
	}
	return c.Library()
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Debug.FlagString)
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}

// CloseDebugFile closes the debug file opened by LoadConfig.
// The standard output streams are left open.
func (c *Config) CloseDebugFile() error {
	if c.Debug.File == nil || c.Debug.File == os.Stderr || c.Debug.File == os.Stdout {
		return nil
	}
	return c.Debug.File.Close()
}
