//go:build unix

package driver

import (
	"os"
	"os/signal"
	"syscall"
)

// WatchSignals arms the unix control signals: SIGUSR1 pauses, SIGUSR2
// resumes, SIGHUP reloads the configuration.
func (d *Driver) WatchSignals() {
	d.signals = make(chan os.Signal, 4)
	signal.Notify(d.signals, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)
}

func (d *Driver) drainSignals() {
	for {
		select {
		case sig := <-d.signals:
			switch sig {
			case syscall.SIGUSR1:
				d.Pause()
			case syscall.SIGUSR2:
				d.Resume()
			case syscall.SIGHUP:
				d.Reload()
			}
		default:
			return
		}
	}
}
