package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/airsense/sds011/internal/logging"
	"github.com/airsense/sds011/internal/sensor"
)

// DefaultBaudRate is the only rate the SDS011 ships with.
const DefaultBaudRate = 9600

// Port is a serial line to the sensor. It satisfies sensor.ByteChannel.
type Port struct {
	port serial.Port
	name string
}

// Open opens and configures the serial port at the given path. A baud of 0
// selects DefaultBaudRate.
func Open(name string, baud int) (*Port, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", name, err)
	}

	// Bytes from before this session would desynchronize the first frame
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("flushing serial port %s: %w", name, err)
	}

	logging.Info("serial port opened",
		zap.String("port", name),
		zap.Int("baud", baud),
	)
	return &Port{port: port, name: name}, nil
}

// Name returns the port path this Port was opened with.
func (p *Port) Name() string { return p.name }

// Write transmits the given bytes to the sensor.
func (p *Port) Write(b []byte) error {
	logging.LogRawBytes("serial write", b)
	if _, err := p.port.Write(b); err != nil {
		return fmt.Errorf("writing to %s: %w", p.name, err)
	}
	return nil
}

// ReadByte blocks for up to timeout waiting for the next byte. A timeout is
// reported as sensor.ErrReadTimeout; anything else means the port failed.
func (p *Port) ReadByte(timeout time.Duration) (byte, error) {
	if err := p.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("setting read timeout on %s: %w", p.name, err)
	}

	var buf [1]byte
	n, err := p.port.Read(buf[:])
	if err != nil {
		return 0, fmt.Errorf("reading from %s: %w", p.name, err)
	}
	// go.bug.st/serial signals an expired read timeout with n == 0, nil
	if n == 0 {
		return 0, fmt.Errorf("%s: %w", p.name, sensor.ErrReadTimeout)
	}
	return buf[0], nil
}

// Close releases the port.
func (p *Port) Close() error {
	logging.Info("serial port closed", zap.String("port", p.name))
	return p.port.Close()
}
