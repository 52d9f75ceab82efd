package sensor

import (
	"bytes"
	"time"

	"github.com/airsense/sds011/internal/protocol"
)

// fakeChannel is a scripted ByteChannel for tests. Reads are served from a
// pre-loaded buffer; an optional respond hook turns each write into queued
// reply bytes, which is enough to play the sensor's side of a command
// exchange. Once the read buffer runs dry, ReadByte reports a timeout
// immediately.
type fakeChannel struct {
	reads    []byte
	pos      int
	writes   [][]byte
	writeErr error
	readErr  error
	respond  func(written []byte) []byte
}

func (c *fakeChannel) Write(p []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, bytes.Clone(p))
	if c.respond != nil {
		c.reads = append(c.reads, c.respond(p)...)
	}
	return nil
}

func (c *fakeChannel) ReadByte(_ time.Duration) (byte, error) {
	if c.pos >= len(c.reads) {
		if c.readErr != nil {
			return 0, c.readErr
		}
		return 0, ErrReadTimeout
	}
	b := c.reads[c.pos]
	c.pos++
	return b, nil
}

func (c *fakeChannel) Close() error { return nil }

// ackFor shapes the sensor's acknowledgement of the given command frame:
// same payload, ack ID, device ID filled in, checksum recomputed.
func ackFor(cmd []byte, device uint16) []byte {
	ack := bytes.Clone(cmd)
	ack[1] = protocol.IDAck
	ack[6] = byte(device >> 8)
	ack[7] = byte(device)
	ack[8] = protocol.Checksum(ack[2:8])
	return ack
}
