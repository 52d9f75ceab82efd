// Package sensor drives an SDS011 particulate matter sensor over a byte
// channel.
//
// The package owns the read/command state machine on top of the frame codec
// in internal/protocol. It deliberately does not open or configure the
// physical serial port; any transport satisfying ByteChannel works, which
// keeps the driver testable without hardware (see internal/serialport for
// the real transport).
//
// # Reading
//
// Reader consumes the continuous byte stream and produces validated frames.
// It scans for the head sentinel, accumulates a full 10-byte frame, and on
// any validation failure drops a single byte and rescans, so one corrupted
// frame never costs the valid bytes that follow it.
//
// # Commands
//
// Session issues commands (set work period, report mode, device ID, sleep)
// and correlates the sensor's acknowledgement frames, with a bounded ack
// timeout and a retry budget. Non-matching frames inside the wait window are
// treated as noise. I/O failures from the channel are fatal for the session
// and surface immediately; the caller decides whether to reconnect.
//
// # Concurrency
//
// One Session owns its channel exclusively: a single goroutine drives both
// writes and reads so command bytes never interleave with a partly received
// data frame. Multiple producers must serialize through one Session. The
// package needs no locks of its own.
//
// # Usage Example
//
//	sess := sensor.NewSession(ch, sensor.Options{})
//	if err := sess.SetWorkPeriod(5); err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    m, err := sess.NextMeasurement(2 * time.Minute)
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(m)
//	}
package sensor
