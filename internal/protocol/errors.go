package protocol

import "errors"

// Frame validation errors returned by Decode. All of them mean "this byte
// window is not a frame" and are recoverable by resynchronizing on the next
// head sentinel; none indicate a broken channel.
var (
	// ErrBadLength indicates the input is not exactly FrameLength bytes.
	ErrBadLength = errors.New("bad frame length")

	// ErrBadSentinel indicates a missing head or tail sentinel byte.
	ErrBadSentinel = errors.New("bad frame sentinel")

	// ErrChecksumMismatch indicates the payload sum does not match the
	// checksum byte carried in the frame.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnknownType indicates a well-formed frame whose ID byte is neither
	// a data frame nor an ack frame.
	ErrUnknownType = errors.New("unknown frame type")
)
