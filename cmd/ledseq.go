package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"ledseq/pkg/app"
	"ledseq/pkg/app/config"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

const defaultConfigFile = "/opt/ledseq/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "Non-blocking LED sequencer for raspberry pi gpio outputs",
		Version: app.VERSION,
		Description: "Drive LEDs (or any two-state output) through repeating on/off sequences." +
			"\n Sequences are started and stopped over http, mqtt or cron schedules.",
		UsageText: "ledseq [--config <file>] [--log standard|debug|trace]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the sequencer and use the configuration file ledseq.yaml" +
			"\n\t\tledseq --config /opt/ledseq/ledseq.yaml" +
			"\n\tvalidate a configuration file and list its sequences" +
			"\n\t\tledseq --config ledseq.yaml check",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Value: "", Usage: "`LEVEL` overrides the configured log level (standard|debug|trace)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "validate the configuration file and print the sequences",
				Action: func(ctx *cli.Context) error {
					if err := cfg.LoadConfig(); err != nil {
						return err
					}

					lib, err := cfg.Library()
					if err != nil {
						return err
					}

					names := make([]string, 0, len(lib))
					for n := range lib {
						names = append(names, n)
					}
					sort.Strings(names)
					for _, n := range names {
						fmt.Fprintf(ctx.App.Writer, "%-12s %6vms  %v\n", n, lib[n].Period(), lib[n])
					}
					return nil
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
			defer func() {
				debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
				_ = cfg.CloseDebugFile()
			}()

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for am os.Interrupt signal (CTRL C) or the app to shut down
			select {
			case sig := <-quit:
				debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
			case <-a.Shutdown():
				debug.InfoLog.Print("app shut down")
			}

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
	return
}
