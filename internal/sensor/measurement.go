package sensor

import (
	"fmt"
	"time"

	"github.com/airsense/sds011/internal/protocol"
)

// Measurement is one decoded particulate matter reading.
type Measurement struct {
	Timestamp time.Time `json:"timestamp"`
	PM25      float64   `json:"pm25"` // µg/m³
	PM10      float64   `json:"pm10"` // µg/m³
	DeviceID  uint16    `json:"device_id"`
}

func newMeasurement(f *protocol.DataFrame) Measurement {
	return Measurement{
		Timestamp: time.Now(),
		PM25:      f.PM25(),
		PM10:      f.PM10(),
		DeviceID:  f.DeviceID,
	}
}

func (m Measurement) String() string {
	return fmt.Sprintf("[%s] PM2.5=%.1f µg/m³  PM10=%.1f µg/m³  device=0x%04X",
		m.Timestamp.Format(time.RFC3339), m.PM25, m.PM10, m.DeviceID)
}
