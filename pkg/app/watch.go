package app

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/womat/debug"

	"ledseq/pkg/app/config"
)

// reloadDelay collects the burst of events editors create while saving a file.
const reloadDelay = 500 * time.Millisecond

// watchConfig reloads the sequences whenever the configuration file is written.
// Running sequences are not affected, they keep the steps they were started with.
func (app *App) watchConfig() (err error) {
	if app.watcher, err = fsnotify.NewWatcher(); err != nil {
		return err
	}

	if err = app.watcher.Add(app.config.Flag.ConfigFile); err != nil {
		_ = app.watcher.Close()
		app.watcher = nil
		return err
	}

	go app.watch(app.watcher, app.config.Flag.ConfigFile)
	return nil
}

func (app *App) watch(w *fsnotify.Watcher, file string) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-app.shutdown:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(reloadDelay)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			app.reload(file)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			debug.ErrorLog.Printf("config watcher: %v", err)
		}
	}
}

// reload reads the sequences of file and hands them to the control loop.
func (app *App) reload(file string) {
	lib, err := config.LoadLibrary(file)
	if err != nil {
		debug.ErrorLog.Printf("reload sequences: %v", err)
		return
	}

	if err = app.do(command{action: actionReload, library: lib, source: "watch"}).err; err != nil {
		debug.ErrorLog.Printf("reload sequences: %v", err)
	}
}
