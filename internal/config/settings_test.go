package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain "sds011"
	if !strings.Contains(configDir, "sds011") {
		t.Errorf("GetConfigDir() = %v, should contain 'sds011'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	// Should end with config.yaml
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Version != 1 {
		t.Errorf("NewSettings().Version = %v, want 1", s.Version)
	}
	if s.Port != DefaultPort {
		t.Errorf("NewSettings().Port = %v, want %v", s.Port, DefaultPort)
	}
	if s.Baud != DefaultBaud {
		t.Errorf("NewSettings().Baud = %v, want %v", s.Baud, DefaultBaud)
	}
	if s.WorkPeriod != DefaultWorkPeriod {
		t.Errorf("NewSettings().WorkPeriod = %v, want %v", s.WorkPeriod, DefaultWorkPeriod)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("default settings should validate, got: %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(s *Settings) {}},
		{name: "continuous work period", mutate: func(s *Settings) { s.WorkPeriod = 0 }},
		{name: "max work period", mutate: func(s *Settings) { s.WorkPeriod = 30 }},
		{name: "work period too long", mutate: func(s *Settings) { s.WorkPeriod = 31 }, wantErr: true},
		{name: "negative work period", mutate: func(s *Settings) { s.WorkPeriod = -1 }, wantErr: true},
		{name: "empty port", mutate: func(s *Settings) { s.Port = "" }, wantErr: true},
		{name: "zero baud", mutate: func(s *Settings) { s.Baud = 0 }, wantErr: true},
		{name: "zero retries", mutate: func(s *Settings) { s.Retries = 0 }, wantErr: true},
		{name: "zero ack timeout", mutate: func(s *Settings) { s.AckTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings()
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsYAMLRoundTrip(t *testing.T) {
	s := NewSettings()
	s.Port = "/dev/ttyAMA0"
	s.WorkPeriod = 10

	data, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if loaded.Port != "/dev/ttyAMA0" {
		t.Errorf("Port = %v, want /dev/ttyAMA0", loaded.Port)
	}
	if loaded.WorkPeriod != 10 {
		t.Errorf("WorkPeriod = %v, want 10", loaded.WorkPeriod)
	}
	if loaded.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %v, want %v", loaded.ListenAddr, DefaultListenAddr)
	}
}

func TestSaveAndReload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("config dir redirection uses HOME/XDG variables")
	}

	// Redirect the config dir into the test's temp dir
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	s := NewSettings()
	s.Port = "/dev/ttyAMA0"
	s.WorkPeriod = 7
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if loaded.Port != "/dev/ttyAMA0" {
		t.Errorf("Port = %v, want /dev/ttyAMA0", loaded.Port)
	}
	if loaded.WorkPeriod != 7 {
		t.Errorf("WorkPeriod = %v, want 7", loaded.WorkPeriod)
	}

	// Out-of-band edits must be visible after another Reload
	loaded.WorkPeriod = 12
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save() after edit error = %v", err)
	}
	again, err := Reload()
	if err != nil {
		t.Fatalf("second Reload() error = %v", err)
	}
	if again.WorkPeriod != 12 {
		t.Errorf("WorkPeriod after reload = %v, want 12", again.WorkPeriod)
	}
}

func TestUnmarshalOverDefaults(t *testing.T) {
	// A partial config file must keep defaults for the keys it omits
	partial := "version: 1\nport: /dev/ttyS5\n"

	settings := NewSettings()
	if err := yaml.Unmarshal([]byte(partial), settings); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if settings.Port != "/dev/ttyS5" {
		t.Errorf("Port = %v, want /dev/ttyS5", settings.Port)
	}
	if settings.Retries != DefaultRetries {
		t.Errorf("Retries = %v, want default %v", settings.Retries, DefaultRetries)
	}
	if settings.WorkPeriod != DefaultWorkPeriod {
		t.Errorf("WorkPeriod = %v, want default %v", settings.WorkPeriod, DefaultWorkPeriod)
	}
}
