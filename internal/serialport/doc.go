// Package serialport provides the physical serial transport for the SDS011
// driver.
//
// It implements sensor.ByteChannel on top of go.bug.st/serial, configuring
// the port the way the sensor expects (9600 baud, 8 data bits, no parity,
// one stop bit). Only cmd/ wires this package in; the driver core in
// internal/sensor never touches the OS port directly, which keeps it
// testable without hardware.
package serialport
