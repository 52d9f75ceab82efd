//go:build ignore

// Decode-capture replays a captured SDS011 byte stream through the frame
// decoder and prints every frame it finds, plus parse statistics. Useful
// for post-mortem analysis of serial captures (e.g. from `cat /dev/ttyUSB0
// | xxd -p`).
//
// Usage: go run tools/decode-capture.go <hex-file>
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/airsense/sds011/internal/protocol"
)

// Statistics tracks decoding results
type Statistics struct {
	TotalBytes    int
	DataFrames    int
	AckFrames     int
	SkippedBytes  int
	DecodeFailure int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: decode-capture <hex-file>")
		fmt.Println("Example: decode-capture captures/ttyUSB0-20260831.hex")
		os.Exit(1)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return r
		}
		return -1
	}, string(raw))

	stream, err := hex.DecodeString(cleaned)
	if err != nil {
		fmt.Printf("Error decoding hex: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== SDS011 Capture Decoder ===\n")
	fmt.Printf("File: %s\n", os.Args[1])
	fmt.Printf("Bytes: %d\n\n", len(stream))

	stats := Statistics{TotalBytes: len(stream)}

	// Same resynchronization discipline as the live reader: scan to a head
	// sentinel, try a 10-byte window, slide one byte on failure.
	for len(stream) > 0 {
		idx := bytes.IndexByte(stream, protocol.FrameHead)
		if idx < 0 {
			stats.SkippedBytes += len(stream)
			break
		}
		stats.SkippedBytes += idx
		stream = stream[idx:]

		if len(stream) < protocol.FrameLength {
			stats.SkippedBytes += len(stream)
			break
		}

		frame, err := protocol.Decode(stream[:protocol.FrameLength])
		if err != nil {
			stats.DecodeFailure++
			stats.SkippedBytes++
			stream = stream[1:]
			continue
		}

		switch f := frame.(type) {
		case *protocol.DataFrame:
			stats.DataFrames++
			fmt.Printf("  %s\n", f)
		case *protocol.AckFrame:
			stats.AckFrames++
			fmt.Printf("  %s\n", f)
		}
		stream = stream[protocol.FrameLength:]
	}

	fmt.Printf("\n=== Statistics ===\n")
	fmt.Printf("Data frames:     %d\n", stats.DataFrames)
	fmt.Printf("Ack frames:      %d\n", stats.AckFrames)
	fmt.Printf("Decode failures: %d\n", stats.DecodeFailure)
	fmt.Printf("Skipped bytes:   %d\n", stats.SkippedBytes)
}
