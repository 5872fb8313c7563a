package app

import (
	"fmt"

	"github.com/womat/debug"
)

// initSchedules registers the configured schedules with the cron scheduler.
func (app *App) initSchedules() error {
	for _, s := range app.config.Schedules {
		c, err := parseAction(s.Action)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", s.Spec, err)
		}
		c.channel, c.source = s.Channel, "cron"

		spec := s.Spec
		if _, err = app.cron.AddFunc(spec, func() {
			debug.InfoLog.Printf("schedule %q: %v on channel %q", spec, c.action, c.channel)
			if err := app.do(c).err; err != nil {
				debug.ErrorLog.Printf("schedule %q: %v", spec, err)
			}
		}); err != nil {
			return fmt.Errorf("schedule %q: %w", s.Spec, err)
		}
	}

	return nil
}
