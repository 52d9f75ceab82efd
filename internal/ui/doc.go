// Package ui implements the live measurement view for the sds011 tool.
//
// The watch screen is a Bubble Tea program showing the most recent PM2.5
// and PM10 readings, the reporting device, and frame counters, updating as
// measurements arrive from the sensor session. A spinner indicates the
// sensor is alive but between reports (work periods of several minutes are
// common).
//
// # Usage Example
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	if err := ui.RunWatch(ctx, session.Stream(ctx), "/dev/ttyUSB0"); err != nil {
//	    log.Fatal(err)
//	}
//
// Quitting the view (q, Esc, Ctrl+C) returns control to the caller; the
// sensor session itself is owned and closed by the caller.
package ui
