package sensor

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/airsense/sds011/internal/logging"
	"github.com/airsense/sds011/internal/protocol"
)

// Reader turns the channel's byte stream into a lazy sequence of validated
// frames. It holds only the in-progress frame buffer between calls, so a
// caller may stop consuming at any point without leaking anything beyond
// the channel handle it already owns.
//
// Two states drive it: seeking (buffer empty, scanning for the head
// sentinel) and accumulating (buffer non-empty, collecting the rest of the
// frame). Malformed frames are never surfaced; the reader resynchronizes
// and keeps going.
type Reader struct {
	ch  ByteChannel
	buf []byte
}

// NewReader creates a Reader over the given channel. The channel stays
// owned by the caller; the Reader never closes it.
func NewReader(ch ByteChannel) *Reader {
	return &Reader{
		ch:  ch,
		buf: make([]byte, 0, protocol.FrameLength),
	}
}

// Next blocks until a validated frame arrives or timeout elapses across
// the whole call. It returns ErrReadTimeout (wrapped) when the window
// closes with no complete valid frame; any other error is a channel
// failure. Corrupted byte windows are skipped internally.
func (r *Reader) Next(timeout time.Duration) (protocol.Frame, error) {
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("no frame within %v: %w", timeout, ErrReadTimeout)
		}

		b, err := r.ch.ReadByte(remaining)
		if err != nil {
			return nil, err
		}

		if len(r.buf) == 0 {
			// Seeking: discard everything up to the head sentinel
			if b != protocol.FrameHead {
				continue
			}
		}
		r.buf = append(r.buf, b)

		if len(r.buf) < protocol.FrameLength {
			continue
		}

		frame, err := protocol.Decode(r.buf)
		if err != nil {
			logging.Debug("dropping corrupted frame window",
				zap.Error(err),
				zap.String("bytes", fmt.Sprintf("% X", r.buf)),
			)
			r.resync()
			continue
		}

		r.buf = r.buf[:0]
		return frame, nil
	}
}

// resync discards the buffer's first byte and keeps everything from the
// next head sentinel onward, so a corrupted frame cannot swallow the valid
// bytes that arrived after it.
func (r *Reader) resync() {
	rest := r.buf[1:]
	idx := bytes.IndexByte(rest, protocol.FrameHead)
	if idx < 0 {
		r.buf = r.buf[:0]
		return
	}
	n := copy(r.buf, rest[idx:])
	r.buf = r.buf[:n]
}
