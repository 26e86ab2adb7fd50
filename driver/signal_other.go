//go:build !unix

package driver

// WatchSignals is a no-op where the control signals do not exist.
func (d *Driver) WatchSignals() {}

func (d *Driver) drainSignals() {}
