package protocol

import (
	"encoding/binary"
	"fmt"
)

// Frame layout constants
const (
	FrameHead = 0xAA // Head sentinel, first byte of every frame
	FrameTail = 0xAB // Tail sentinel, last byte of every frame

	IDCommand = 0xB4 // Host → sensor command frame
	IDData    = 0xC0 // Sensor → host measurement frame
	IDAck     = 0xC5 // Sensor → host command acknowledgement

	FrameLength   = 10 // Total frame size on the wire
	PayloadLength = 6  // Payload bytes between ID and checksum

	payloadStart = 2 // Payload offset within a frame
	checksumPos  = 8 // Checksum offset within a frame
)

// Command codes carried in the first payload byte of a command frame
const (
	CmdReportMode = 0x02 // Query/set active vs. passive reporting
	CmdQuery      = 0x04 // Request one measurement (passive mode)
	CmdDeviceID   = 0x05 // Assign a new device ID
	CmdSleepWork  = 0x06 // Put the fan/laser to sleep or wake it
	CmdWorkPeriod = 0x08 // Query/set the reporting period in minutes
)

// Mode byte values (second payload byte of a command frame)
const (
	ModeRead  = 0x00
	ModeWrite = 0x01
)

// Value bytes for CmdReportMode
const (
	ReportActive  = 0x00 // Sensor streams measurements on its own
	ReportPassive = 0x01 // Sensor only answers CmdQuery
)

// Value bytes for CmdSleepWork
const (
	StateSleep = 0x00
	StateWork  = 0x01
)

// BroadcastID addresses every sensor on the bus.
const BroadcastID = 0xFFFF

// Frame is a decoded, checksum-validated protocol frame.
// Concrete types are *DataFrame and *AckFrame.
type Frame interface {
	// ID returns the frame's wire ID byte (IDData or IDAck).
	ID() byte
	// Device returns the responding sensor's device ID.
	Device() uint16
}

// DataFrame is a measurement report (ID byte 0xC0).
type DataFrame struct {
	PM25Raw  uint16 // PM2.5 in tenths of µg/m³
	PM10Raw  uint16 // PM10 in tenths of µg/m³
	DeviceID uint16
}

// ID implements Frame.
func (f *DataFrame) ID() byte { return IDData }

// Device implements Frame.
func (f *DataFrame) Device() uint16 { return f.DeviceID }

// PM25 returns the PM2.5 concentration in µg/m³.
func (f *DataFrame) PM25() float64 { return float64(f.PM25Raw) / 10.0 }

// PM10 returns the PM10 concentration in µg/m³.
func (f *DataFrame) PM10() float64 { return float64(f.PM10Raw) / 10.0 }

func (f *DataFrame) String() string {
	return fmt.Sprintf("Data{pm2.5=%.1f pm10=%.1f device=0x%04X}", f.PM25(), f.PM10(), f.DeviceID)
}

// AckFrame is a command acknowledgement (ID byte 0xC5). The sensor echoes
// the command code, mode, and value so the sender can correlate it with an
// outstanding request.
type AckFrame struct {
	Command  byte // Echoed command code (CmdReportMode, CmdWorkPeriod, ...)
	Mode     byte // Echoed mode (ModeRead or ModeWrite)
	Value    byte // Echoed or current parameter value
	DeviceID uint16
}

// ID implements Frame.
func (f *AckFrame) ID() byte { return IDAck }

// Device implements Frame.
func (f *AckFrame) Device() uint16 { return f.DeviceID }

func (f *AckFrame) String() string {
	return fmt.Sprintf("Ack{cmd=0x%02X mode=0x%02X value=0x%02X device=0x%04X}",
		f.Command, f.Mode, f.Value, f.DeviceID)
}

// EncodeCommand builds the 10-byte wire form of a command frame. Inputs are
// validated by the caller; encoding itself cannot fail.
//
// Payload layout: [code, mode, p1, p2, target-hi, target-lo].
func EncodeCommand(code, mode, p1, p2 byte, target uint16) []byte {
	buf := make([]byte, FrameLength)
	buf[0] = FrameHead
	buf[1] = IDCommand
	buf[2] = code
	buf[3] = mode
	buf[4] = p1
	buf[5] = p2
	buf[6] = byte(target >> 8)
	buf[7] = byte(target)
	buf[checksumPos] = Checksum(buf[payloadStart : payloadStart+PayloadLength])
	buf[9] = FrameTail
	return buf
}

// Decode validates a raw 10-byte frame and returns the typed result.
//
// Validation order: length, head/tail sentinels, checksum, ID byte. Callers
// feeding a byte stream should treat any error as a resynchronization point
// rather than a fatal condition.
func Decode(raw []byte) (Frame, error) {
	if len(raw) != FrameLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrBadLength, len(raw), FrameLength)
	}
	if raw[0] != FrameHead || raw[FrameLength-1] != FrameTail {
		return nil, fmt.Errorf("%w: head=0x%02X tail=0x%02X", ErrBadSentinel, raw[0], raw[FrameLength-1])
	}

	payload := raw[payloadStart : payloadStart+PayloadLength]
	if sum := Checksum(payload); sum != raw[checksumPos] {
		return nil, fmt.Errorf("%w: computed 0x%02X, frame carries 0x%02X", ErrChecksumMismatch, sum, raw[checksumPos])
	}

	switch raw[1] {
	case IDData:
		return &DataFrame{
			PM25Raw: binary.LittleEndian.Uint16(payload[0:2]),
			PM10Raw: binary.LittleEndian.Uint16(payload[2:4]),
			// Device ID is rendered in wire order, high byte first
			DeviceID: uint16(payload[4])<<8 | uint16(payload[5]),
		}, nil
	case IDAck:
		return &AckFrame{
			Command:  payload[0],
			Mode:     payload[1],
			Value:    payload[2],
			DeviceID: uint16(payload[4])<<8 | uint16(payload[5]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: id byte 0x%02X", ErrUnknownType, raw[1])
	}
}
