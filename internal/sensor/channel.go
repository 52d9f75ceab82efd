package sensor

import (
	"errors"
	"time"
)

// ErrReadTimeout is returned by ByteChannel.ReadByte when no byte arrived
// within the given timeout. It is the only read error the driver treats as
// retryable; everything else is a channel failure.
var ErrReadTimeout = errors.New("read timeout")

// ByteChannel is an ordered byte transport to the sensor. Implementations
// are expected to deliver bytes in write order and to honor the per-read
// timeout; they do not need to be safe for concurrent use, because a
// Session owns its channel exclusively.
type ByteChannel interface {
	// Write transmits the given bytes to the sensor.
	Write(p []byte) error

	// ReadByte blocks for up to timeout waiting for the next byte.
	// It returns ErrReadTimeout (possibly wrapped) when the timeout
	// elapses with nothing received.
	ReadByte(timeout time.Duration) (byte, error)

	// Close releases the underlying transport.
	Close() error
}
