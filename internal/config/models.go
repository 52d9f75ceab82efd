package config

import "fmt"

// Default settings values. The work period default mirrors the sensor's
// factory behavior of one report every few minutes rather than continuous
// streaming, which shortens the laser diode's life.
const (
	DefaultPort       = "/dev/ttyUSB0"
	DefaultBaud       = 9600
	DefaultWorkPeriod = 5
	DefaultAckTimeout = 1 // seconds
	DefaultRetries    = 3
	DefaultListenAddr = "localhost:8017"
)

// Settings represents the entire user configuration file.
type Settings struct {
	Version int `yaml:"version"`

	// Port is the serial device path the sensor is attached to.
	Port string `yaml:"port"`
	// Baud is the serial line rate. The SDS011 only ships with 9600.
	Baud int `yaml:"baud"`
	// WorkPeriod is the default reporting interval in minutes (0 = continuous).
	WorkPeriod int `yaml:"work_period"`
	// AckTimeout is the per-attempt command acknowledgement window in seconds.
	AckTimeout int `yaml:"ack_timeout"`
	// Retries is the number of send attempts per command.
	Retries int `yaml:"retries"`
	// ListenAddr is the address the measurement streaming server binds to.
	ListenAddr string `yaml:"listen_addr"`
}

// NewSettings creates Settings populated with the documented defaults.
func NewSettings() *Settings {
	return &Settings{
		Version:    1,
		Port:       DefaultPort,
		Baud:       DefaultBaud,
		WorkPeriod: DefaultWorkPeriod,
		AckTimeout: DefaultAckTimeout,
		Retries:    DefaultRetries,
		ListenAddr: DefaultListenAddr,
	}
}

// Validate checks the settings for values the driver would reject anyway,
// so a bad config file fails at load time instead of mid-session.
func (s *Settings) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if s.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", s.Baud)
	}
	if s.WorkPeriod < 0 || s.WorkPeriod > 30 {
		return fmt.Errorf("work_period %d out of range 0–30", s.WorkPeriod)
	}
	if s.AckTimeout <= 0 {
		return fmt.Errorf("ack_timeout must be positive, got %d", s.AckTimeout)
	}
	if s.Retries <= 0 {
		return fmt.Errorf("retries must be positive, got %d", s.Retries)
	}
	return nil
}
