package sensor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/airsense/sds011/internal/protocol"
)

// newTestSession returns a session with a fast ack window so retry paths
// finish quickly under test.
func newTestSession(ch ByteChannel) *Session {
	return NewSession(ch, Options{AckTimeout: 20 * time.Millisecond, Retries: 3})
}

func TestSetWorkPeriodValidation(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		wantErr bool
	}{
		{name: "continuous mode", minutes: 0},
		{name: "mid range", minutes: 5},
		{name: "upper bound", minutes: 30},
		{name: "just above upper bound", minutes: 31, wantErr: true},
		{name: "negative", minutes: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{respond: func(w []byte) []byte { return ackFor(w, 0xA160) }}
			sess := newTestSession(ch)

			err := sess.SetWorkPeriod(tt.minutes)
			if tt.wantErr {
				if !IsInvalidParameter(err) {
					t.Fatalf("SetWorkPeriod(%d) error = %v, want InvalidParameter", tt.minutes, err)
				}
				// Validation must reject before any bytes hit the wire
				if len(ch.writes) != 0 {
					t.Errorf("SetWorkPeriod(%d) wrote %d frames, want 0", tt.minutes, len(ch.writes))
				}
				return
			}
			if err != nil {
				t.Fatalf("SetWorkPeriod(%d) error: %v", tt.minutes, err)
			}
			if len(ch.writes) != 1 {
				t.Fatalf("SetWorkPeriod(%d) wrote %d frames, want 1", tt.minutes, len(ch.writes))
			}
			want := protocol.EncodeCommand(protocol.CmdWorkPeriod, protocol.ModeWrite, byte(tt.minutes), 0, protocol.BroadcastID)
			if !bytes.Equal(ch.writes[0], want) {
				t.Errorf("wrote % X, want % X", ch.writes[0], want)
			}
		})
	}
}

func TestSetWorkPeriodNoResponse(t *testing.T) {
	ch := &fakeChannel{} // never answers
	sess := newTestSession(ch)

	err := sess.SetWorkPeriod(5)
	if !IsNoResponse(err) {
		t.Fatalf("SetWorkPeriod() error = %v, want NoResponse", err)
	}
	// One write per attempt across the whole retry budget
	if len(ch.writes) != 3 {
		t.Errorf("wrote %d frames, want 3", len(ch.writes))
	}
}

func TestSessionIgnoresUncorrelatedFrames(t *testing.T) {
	// The reply stream carries a measurement and an ack for a different
	// command before the matching ack. Both are noise for SetWorkPeriod.
	ch := &fakeChannel{respond: func(w []byte) []byte {
		var replies []byte
		replies = append(replies, validDataFrame...)
		wrongAck := ackFor(protocol.EncodeCommand(protocol.CmdReportMode, protocol.ModeRead, 0, 0, protocol.BroadcastID), 0xA160)
		replies = append(replies, wrongAck...)
		replies = append(replies, ackFor(w, 0xA160)...)
		return replies
	}}
	sess := newTestSession(ch)

	if err := sess.SetWorkPeriod(5); err != nil {
		t.Fatalf("SetWorkPeriod() error: %v", err)
	}
	if len(ch.writes) != 1 {
		t.Errorf("wrote %d frames, want 1 (noise must not trigger a retry)", len(ch.writes))
	}
}

func TestTargetedSessionRejectsOtherDevices(t *testing.T) {
	// Session targets 0xA160; an ack from 0xBEEF must not satisfy it.
	ch := &fakeChannel{respond: func(w []byte) []byte { return ackFor(w, 0xBEEF) }}
	sess := NewSession(ch, Options{AckTimeout: 20 * time.Millisecond, Retries: 2, Target: 0xA160})

	err := sess.SetWorkPeriod(5)
	if !IsNoResponse(err) {
		t.Fatalf("SetWorkPeriod() error = %v, want NoResponse", err)
	}
}

func TestSessionIOFailure(t *testing.T) {
	t.Run("write failure", func(t *testing.T) {
		ch := &fakeChannel{writeErr: io.ErrClosedPipe}
		sess := newTestSession(ch)

		err := sess.SetWorkPeriod(5)
		if !IsIOFailure(err) {
			t.Fatalf("SetWorkPeriod() error = %v, want IOFailure", err)
		}
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Errorf("error chain lost underlying cause: %v", err)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		ch := &fakeChannel{readErr: io.ErrUnexpectedEOF}
		sess := newTestSession(ch)

		err := sess.SetWorkPeriod(5)
		if !IsIOFailure(err) {
			t.Fatalf("SetWorkPeriod() error = %v, want IOFailure", err)
		}
		// Channel failures are fatal: no retry may follow the first write
		if len(ch.writes) != 1 {
			t.Errorf("wrote %d frames, want 1", len(ch.writes))
		}
	})
}

func TestQueryMode(t *testing.T) {
	ch := &fakeChannel{respond: func(w []byte) []byte {
		ack := ackFor(w, 0xA160)
		ack[4] = protocol.ReportPassive // value byte
		ack[8] = protocol.Checksum(ack[2:8])
		return ack
	}}
	sess := newTestSession(ch)

	passive, err := sess.QueryMode()
	if err != nil {
		t.Fatalf("QueryMode() error: %v", err)
	}
	if !passive {
		t.Error("QueryMode() = active, want passive")
	}
}

func TestSetDeviceIDRetargets(t *testing.T) {
	ch := &fakeChannel{respond: func(w []byte) []byte { return ackFor(w, 0xA2B4) }}
	sess := newTestSession(ch)

	if err := sess.SetDeviceID(0xA2B4); err != nil {
		t.Fatalf("SetDeviceID() error: %v", err)
	}
	if sess.Target() != 0xA2B4 {
		t.Errorf("Target() = 0x%04X, want 0xA2B4", sess.Target())
	}

	if err := sess.SetDeviceID(protocol.BroadcastID); !IsInvalidParameter(err) {
		t.Errorf("SetDeviceID(broadcast) error = %v, want InvalidParameter", err)
	}
}

func TestQueryReturnsMeasurement(t *testing.T) {
	ch := &fakeChannel{respond: func(w []byte) []byte { return bytes.Clone(validDataFrame) }}
	sess := newTestSession(ch)

	m, err := sess.Query()
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if m.PM25 != 123.6 || m.PM10 != 261.8 {
		t.Errorf("measurement %.1f/%.1f, want 123.6/261.8", m.PM25, m.PM10)
	}
	if m.DeviceID != 0xA160 {
		t.Errorf("DeviceID = 0x%04X, want 0xA160", m.DeviceID)
	}
	if m.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestNextMeasurementSkipsAcks(t *testing.T) {
	ack := ackFor(protocol.EncodeCommand(protocol.CmdWorkPeriod, protocol.ModeWrite, 5, 0, protocol.BroadcastID), 0xA160)
	stream := append(bytes.Clone(ack), validDataFrame...)
	sess := newTestSession(&fakeChannel{reads: stream})

	m, err := sess.NextMeasurement(time.Second)
	if err != nil {
		t.Fatalf("NextMeasurement() error: %v", err)
	}
	if m.PM25 != 123.6 {
		t.Errorf("PM25 = %v, want 123.6", m.PM25)
	}
}

func TestStreamDeliversAndStops(t *testing.T) {
	var stream []byte
	stream = append(stream, validDataFrame...)
	stream = append(stream, validDataFrame...)
	ch := &fakeChannel{reads: stream, readErr: io.ErrClosedPipe}
	sess := newTestSession(ch)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var got []Measurement
	for m := range sess.Stream(ctx) {
		got = append(got, m)
	}
	if len(got) != 2 {
		t.Fatalf("received %d measurements, want 2", len(got))
	}
	if err := sess.Err(); !IsIOFailure(err) {
		t.Errorf("Err() = %v, want an IO failure", err)
	}
	if err := sess.Err(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Err() = %v, want wrapped %v", err, io.ErrClosedPipe)
	}
}

func TestStreamErrNilAfterCancel(t *testing.T) {
	sess := newTestSession(&fakeChannel{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range sess.Stream(ctx) {
	}
	if err := sess.Err(); err != nil {
		t.Errorf("Err() after cancellation = %v, want nil", err)
	}
}
