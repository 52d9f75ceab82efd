// Package config provides user configuration management for the sds011 tool.
//
// This package manages a YAML-based configuration file holding defaults for
// the serial port, work period, acknowledgement policy, and the streaming
// server listen address. CLI flags always override file values; the file
// only spares the user from repeating them.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/sds011/config.yaml or $HOME/.config/sds011/config.yaml
//   - macOS: $HOME/.config/sds011/config.yaml
//   - Windows: %LOCALAPPDATA%\sds011\config.yaml
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	settings.Port = "/dev/ttyUSB1"
//	if err := settings.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// A missing file is not an error: Load returns the documented defaults.
// Saves are atomic (temp file plus rename) to survive crashes mid-write.
package config
