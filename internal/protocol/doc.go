// Package protocol implements the SDS011 laser dust sensor binary protocol.
//
// This package handles construction, parsing, and validation of the
// fixed-length binary frames exchanged with Nova Fitness SDS011 particulate
// matter sensors over a serial line.
//
// # Frame Format
//
// Every frame on the wire is exactly 10 bytes:
//   - Head sentinel: 0xAA
//   - ID byte: 0xB4 (command), 0xC0 (measurement data), 0xC5 (command ack)
//   - Payload: 6 bytes
//   - Checksum: 1 byte (sum of the 6 payload bytes, mod 256)
//   - Tail sentinel: 0xAB
//
// # Measurement Data (0xC0)
//
// The payload carries PM2.5 and PM10 concentrations as little-endian uint16
// values in tenths of µg/m³, followed by the sensor's 2-byte device ID:
//
//	AA C0 D4 04 3A 0A A1 60 1D AB
//	      └PM2.5┘ └PM10─┘ └ID──┘
//	      0x04D4 = 1236 → 123.6 µg/m³
//
// # Commands (0xB4) and Acks (0xC5)
//
// Command payloads hold a command code, a read/write mode byte, up to two
// parameter bytes, and the 2-byte target device ID (0xFFFF broadcasts to
// every sensor on the bus). The sensor answers with an ack frame echoing the
// command code, mode, value, and its own device ID.
//
// # Usage Example
//
//	// Build a "set work period to 5 minutes" command
//	raw := protocol.EncodeCommand(protocol.CmdWorkPeriod, protocol.ModeWrite, 5, 0, protocol.BroadcastID)
//
//	// Decode a frame received from the wire
//	frame, err := protocol.Decode(raw10)
//	if err != nil {
//	    // corrupted frame, resynchronize
//	}
//	switch f := frame.(type) {
//	case *protocol.DataFrame:
//	    fmt.Printf("PM2.5=%.1f PM10=%.1f\n", f.PM25(), f.PM10())
//	case *protocol.AckFrame:
//	    // correlate with an outstanding command
//	}
//
// # Thread Safety
//
// The codec is stateless; all functions are safe for concurrent use.
package protocol
