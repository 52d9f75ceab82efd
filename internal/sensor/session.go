package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/airsense/sds011/internal/logging"
	"github.com/airsense/sds011/internal/protocol"
)

// Defaults for the command acknowledgement policy. The sensor datasheet
// does not pin these down; both are configurable through Options.
const (
	DefaultAckTimeout = 1 * time.Second
	DefaultRetries    = 3

	// MaxWorkPeriod is the longest reporting interval the sensor accepts,
	// in minutes. 0 means continuous streaming.
	MaxWorkPeriod = 30
)

// Options configures a Session. Zero values select the documented defaults.
type Options struct {
	// AckTimeout bounds the wait for an acknowledgement after each write.
	AckTimeout time.Duration
	// Retries is the total number of send attempts per command.
	Retries int
	// Target selects the sensor to address. Zero targets every sensor on
	// the bus (broadcast).
	Target uint16
}

// Session drives one sensor over an exclusively owned byte channel. It is
// not safe for concurrent use: a single goroutine must issue commands and
// consume measurements so command bytes never interleave with a partly
// received frame.
type Session struct {
	ch         ByteChannel
	reader     *Reader
	target     uint16
	ackTimeout time.Duration
	retries    int
	streamErr  error
}

// NewSession creates a Session over the given channel. The caller keeps
// ownership of the channel and closes it when done.
func NewSession(ch ByteChannel, opts Options) *Session {
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = DefaultAckTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	target := opts.Target
	if target == 0 {
		target = protocol.BroadcastID
	}
	return &Session{
		ch:         ch,
		reader:     NewReader(ch),
		target:     target,
		ackTimeout: opts.AckTimeout,
		retries:    opts.Retries,
	}
}

// Target returns the device ID this session addresses.
func (s *Session) Target() uint16 { return s.target }

// SetWorkPeriod sets the sensor's reporting interval in minutes. 0 selects
// continuous streaming; values above MaxWorkPeriod are rejected before any
// bytes reach the channel.
func (s *Session) SetWorkPeriod(minutes int) error {
	if minutes < 0 || minutes > MaxWorkPeriod {
		return newInvalidParameter("work period %d out of range 0–%d", minutes, MaxWorkPeriod)
	}
	_, err := s.command(protocol.CmdWorkPeriod, protocol.ModeWrite, byte(minutes), 0)
	return err
}

// WorkPeriod queries the sensor's current reporting interval in minutes.
func (s *Session) WorkPeriod() (int, error) {
	ack, err := s.command(protocol.CmdWorkPeriod, protocol.ModeRead, 0, 0)
	if err != nil {
		return 0, err
	}
	return int(ack.Value), nil
}

// QueryMode reports whether the sensor is in passive mode (answering only
// explicit queries) as opposed to actively streaming measurements.
func (s *Session) QueryMode() (passive bool, err error) {
	ack, err := s.command(protocol.CmdReportMode, protocol.ModeRead, 0, 0)
	if err != nil {
		return false, err
	}
	return ack.Value == protocol.ReportPassive, nil
}

// SetReportMode switches the sensor between active streaming and passive
// query-only reporting.
func (s *Session) SetReportMode(passive bool) error {
	value := byte(protocol.ReportActive)
	if passive {
		value = protocol.ReportPassive
	}
	_, err := s.command(protocol.CmdReportMode, protocol.ModeWrite, value, 0)
	return err
}

// SetDeviceID assigns a new device ID to the addressed sensor. On success
// the session retargets itself to the new ID.
func (s *Session) SetDeviceID(id uint16) error {
	if id == protocol.BroadcastID {
		return newInvalidParameter("device ID 0x%04X is reserved for broadcast", id)
	}
	ack, err := s.command(protocol.CmdDeviceID, protocol.ModeWrite, byte(id>>8), byte(id))
	if err != nil {
		return err
	}
	s.target = ack.DeviceID
	return nil
}

// Sleep stops the fan and laser. The sensor keeps listening for commands.
func (s *Session) Sleep() error {
	_, err := s.command(protocol.CmdSleepWork, protocol.ModeWrite, protocol.StateSleep, 0)
	return err
}

// Wake spins the fan and laser back up after Sleep.
func (s *Session) Wake() error {
	_, err := s.command(protocol.CmdSleepWork, protocol.ModeWrite, protocol.StateWork, 0)
	return err
}

// Query requests a single measurement in passive mode.
func (s *Session) Query() (Measurement, error) {
	raw := protocol.EncodeCommand(protocol.CmdQuery, protocol.ModeRead, 0, 0, s.target)

	for attempt := 1; attempt <= s.retries; attempt++ {
		if err := s.ch.Write(raw); err != nil {
			return Measurement{}, newIOFailure("writing query command", err)
		}

		frame, err := s.awaitFrame(func(f protocol.Frame) bool {
			_, ok := f.(*protocol.DataFrame)
			return ok && s.matchesTarget(f.Device())
		})
		if err == nil {
			return newMeasurement(frame.(*protocol.DataFrame)), nil
		}
		if !errors.Is(err, ErrReadTimeout) {
			return Measurement{}, newIOFailure("reading query reply", err)
		}

		logging.Debug("query attempt timed out",
			zap.Int("attempt", attempt),
			zap.Int("retries", s.retries),
		)
	}

	return Measurement{}, newNoResponse(fmt.Sprintf("no measurement after %d attempts", s.retries))
}

// NextMeasurement blocks until the sensor reports a measurement or the
// timeout elapses. Ack frames and frames from other sensors are skipped.
func (s *Session) NextMeasurement(timeout time.Duration) (Measurement, error) {
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Measurement{}, newNoResponse(fmt.Sprintf("no measurement within %v", timeout))
		}

		frame, err := s.reader.Next(remaining)
		if errors.Is(err, ErrReadTimeout) {
			continue
		}
		if err != nil {
			return Measurement{}, newIOFailure("reading measurement", err)
		}

		data, ok := frame.(*protocol.DataFrame)
		if !ok || !s.matchesTarget(data.DeviceID) {
			continue
		}
		return newMeasurement(data), nil
	}
}

// Stream takes over the session's read side and delivers measurements on
// the returned channel until ctx is cancelled or the byte channel fails.
// The channel is closed on exit; Err reports why. While streaming, no
// other session method may be called.
func (s *Session) Stream(ctx context.Context) <-chan Measurement {
	out := make(chan Measurement)
	s.streamErr = nil

	go func() {
		defer close(out)
		for {
			if ctx.Err() != nil {
				return
			}

			frame, err := s.reader.Next(s.ackTimeout)
			if errors.Is(err, ErrReadTimeout) {
				continue
			}
			if err != nil {
				s.streamErr = newIOFailure("reading measurement stream", err)
				logging.Error("measurement stream stopped", zap.Error(err))
				return
			}

			data, ok := frame.(*protocol.DataFrame)
			if !ok || !s.matchesTarget(data.DeviceID) {
				continue
			}

			select {
			case out <- newMeasurement(data):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Err reports why the last Stream terminated. It returns nil while the
// stream is still open and after a clean cancellation; a channel IoFailure
// is reported here once the stream channel has closed.
func (s *Session) Err() error { return s.streamErr }

// command encodes and writes one command frame, then waits for the matching
// ack, retrying the whole write-and-wait cycle through the retry budget.
func (s *Session) command(code, mode, p1, p2 byte) (*protocol.AckFrame, error) {
	raw := protocol.EncodeCommand(code, mode, p1, p2, s.target)

	for attempt := 1; attempt <= s.retries; attempt++ {
		logging.Debug("sending command",
			zap.String("frame", fmt.Sprintf("% X", raw)),
			zap.Int("attempt", attempt),
		)
		if err := s.ch.Write(raw); err != nil {
			return nil, newIOFailure("writing command", err)
		}

		frame, err := s.awaitFrame(func(f protocol.Frame) bool {
			ack, ok := f.(*protocol.AckFrame)
			return ok && ack.Command == code && s.matchesTarget(ack.DeviceID)
		})
		if err == nil {
			return frame.(*protocol.AckFrame), nil
		}
		if !errors.Is(err, ErrReadTimeout) {
			return nil, newIOFailure("reading command ack", err)
		}

		logging.Warn("command unacknowledged, retrying",
			zap.Uint8("command", code),
			zap.Int("attempt", attempt),
			zap.Int("retries", s.retries),
		)
	}

	return nil, newNoResponse(fmt.Sprintf("command 0x%02X unacknowledged after %d attempts", code, s.retries))
}

// awaitFrame consumes frames until match accepts one or the ack window
// closes. Everything that does not match is noise and stays unanswered.
func (s *Session) awaitFrame(match func(protocol.Frame) bool) (protocol.Frame, error) {
	deadline := time.Now().Add(s.ackTimeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrReadTimeout
		}

		frame, err := s.reader.Next(remaining)
		if err != nil {
			return nil, err
		}
		if match(frame) {
			return frame, nil
		}

		logging.Debug("ignoring uncorrelated frame", zap.Any("frame", frame))
	}
}

// matchesTarget reports whether a frame from the given device belongs to
// this session. A broadcast session accepts every device.
func (s *Session) matchesTarget(device uint16) bool {
	return s.target == protocol.BroadcastID || device == s.target
}
