package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/airsense/sds011/internal/config"
	"github.com/airsense/sds011/internal/sensor"
	"github.com/airsense/sds011/internal/serialport"
	"github.com/airsense/sds011/internal/server"
	"github.com/airsense/sds011/internal/ui"
)

// Command flags; file-config values apply unless the flag is set explicitly
var (
	portPath   string
	baudRate   int
	workPeriod int
	ackTimeout int
	retries    int
	deviceHex  string
	listenAddr string
)

func init() {
	// Common flags for sensor commands (persistent on root)
	rootCmd.PersistentFlags().StringVarP(&portPath, "port", "p", config.DefaultPort, "Serial port the sensor is connected to")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", config.DefaultBaud, "Serial baud rate")
	rootCmd.PersistentFlags().IntVarP(&workPeriod, "work", "w", config.DefaultWorkPeriod, "Work period in minutes (0 = continuous)")
	rootCmd.PersistentFlags().IntVar(&ackTimeout, "timeout", config.DefaultAckTimeout, "Command acknowledgement timeout in seconds")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", config.DefaultRetries, "Send attempts per command")
	rootCmd.PersistentFlags().StringVar(&deviceHex, "device", "", "Target device ID in hex (default: broadcast)")

	// Add subcommands directly to root
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setWorkPeriodCmd)
	rootCmd.AddCommand(queryModeCmd)
	rootCmd.AddCommand(setDeviceIDCmd)
	rootCmd.AddCommand(sleepCmd)
	rootCmd.AddCommand(wakeCmd)
	rootCmd.AddCommand(configCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// resolveSettings merges the config file with explicitly set flags.
// Flags win; file values fill in everything the user did not type.
func resolveSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		settings.Port = portPath
	}
	if flags.Changed("baud") {
		settings.Baud = baudRate
	}
	if flags.Changed("work") {
		settings.WorkPeriod = workPeriod
	}
	if flags.Changed("timeout") {
		settings.AckTimeout = ackTimeout
	}
	if flags.Changed("retries") {
		settings.Retries = retries
	}
	if flags.Changed("listen") {
		settings.ListenAddr = listenAddr
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// openSession opens the serial port and wraps it in a command session.
// The caller closes the returned port.
func openSession(cmd *cobra.Command) (*serialport.Port, *sensor.Session, *config.Settings, error) {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	var target uint16
	if deviceHex != "" {
		id, err := parseDeviceID(deviceHex)
		if err != nil {
			return nil, nil, nil, err
		}
		target = id
	}

	port, err := serialport.Open(settings.Port, settings.Baud)
	if err != nil {
		return nil, nil, nil, err
	}

	sess := sensor.NewSession(port, sensor.Options{
		AckTimeout: time.Duration(settings.AckTimeout) * time.Second,
		Retries:    settings.Retries,
		Target:     target,
	})
	return port, sess, settings, nil
}

func parseDeviceID(s string) (uint16, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid device ID %q (expected hex like A160): %w", s, err)
	}
	return uint16(id), nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// readCmd continuously prints measurements
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Continuously read and print measurements",
	Long: `Open the serial port, apply the configured work period, and print
every measurement the sensor reports until interrupted.`,
	Example: `  # Read with defaults (/dev/ttyUSB0, report every 5 minutes)
  sds011ctl read

  # Continuous streaming on another port
  sds011ctl read --port /dev/ttyAMA0 --work 0`,
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	port, sess, settings, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer port.Close()

	if err := sess.SetWorkPeriod(settings.WorkPeriod); err != nil {
		return fmt.Errorf("setting work period: %w", err)
	}
	fmt.Printf("Reading from %s (work period: %d min). Ctrl+C to stop.\n", settings.Port, settings.WorkPeriod)

	ctx, stop := signalContext()
	defer stop()

	for m := range sess.Stream(ctx) {
		fmt.Println(m)
	}
	return sess.Err()
}

// watchCmd shows a live terminal view
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live measurement view",
	Long: `Open the serial port and display the latest PM2.5/PM10 readings in a
full-screen terminal view, updating as the sensor reports.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	port, sess, settings, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer port.Close()

	if err := sess.SetWorkPeriod(settings.WorkPeriod); err != nil {
		return fmt.Errorf("setting work period: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	err = ui.RunWatch(ctx, sess.Stream(ctx), settings.Port)
	if serr := sess.Err(); serr != nil {
		return serr
	}
	return err
}

// serveCmd streams measurements over WebSocket
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream measurements over WebSocket",
	Long: `Open the serial port and serve measurements to WebSocket clients as
JSON. Dashboards connect to ws://<listen-addr>/ws; /healthz reports
liveness and the connected client count.`,
	Example: `  # Serve on the default address
  sds011ctl serve

  # Bind on all interfaces
  sds011ctl serve --listen :8017`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", config.DefaultListenAddr, "Address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	port, sess, settings, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer port.Close()

	if err := sess.SetWorkPeriod(settings.WorkPeriod); err != nil {
		return fmt.Errorf("setting work period: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	// A dead serial port shuts the server down rather than leaving
	// clients on a silent stream.
	srvCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := server.New(&server.Config{ListenAddr: settings.ListenAddr})
	go func() {
		srv.Broadcast(srvCtx, sess.Stream(srvCtx))
		cancel()
	}()

	fmt.Printf("Streaming measurements on ws://%s/ws\n", settings.ListenAddr)
	err = srv.Start(srvCtx)
	if serr := sess.Err(); serr != nil {
		return serr
	}
	return err
}

// setWorkPeriodCmd sets the reporting interval
var setWorkPeriodCmd = &cobra.Command{
	Use:   "set-work-period <minutes>",
	Short: "Set the sensor's reporting interval",
	Long: `Set how often the sensor reports a measurement, in minutes (0–30).
0 selects continuous streaming; longer periods extend the laser
diode's service life.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid minutes %q: %w", args[0], err)
		}

		port, sess, _, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer port.Close()

		if err := sess.SetWorkPeriod(minutes); err != nil {
			return err
		}
		fmt.Printf("Work period set to %d minute(s)\n", minutes)
		return nil
	},
}

// queryModeCmd reports the current reporting mode
var queryModeCmd = &cobra.Command{
	Use:   "query-mode",
	Short: "Query the sensor's reporting mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, sess, _, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer port.Close()

		passive, err := sess.QueryMode()
		if err != nil {
			return err
		}
		if passive {
			fmt.Println("Report mode: passive (answers queries only)")
		} else {
			fmt.Println("Report mode: active (streams measurements)")
		}
		return nil
	},
}

// setDeviceIDCmd assigns a new device ID
var setDeviceIDCmd = &cobra.Command{
	Use:   "set-device-id <hex-id>",
	Short: "Assign a new device ID to the sensor",
	Long: `Assign a new 2-byte device ID, given in hex (e.g. A2B4). Combine with
--device to retarget one sensor on a shared bus; without it the
command broadcasts and every listening sensor takes the new ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseDeviceID(args[0])
		if err != nil {
			return err
		}

		port, sess, _, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer port.Close()

		if err := sess.SetDeviceID(id); err != nil {
			return err
		}
		fmt.Printf("Device ID set to 0x%04X\n", id)
		return nil
	},
}

// sleepCmd stops the fan and laser
var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Put the sensor to sleep",
	Long: `Stop the fan and laser diode. The sensor keeps listening on the
serial line and wakes on 'sds011ctl wake'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, sess, _, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer port.Close()

		if err := sess.Sleep(); err != nil {
			return err
		}
		fmt.Println("Sensor sleeping")
		return nil
	},
}

// configCmd groups settings-file management
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Inspect or create the YAML configuration file. Values in the file
apply to every command; explicitly set flags override them.`,
}

var forceInit bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Example: `  # Create the file, then edit it
  sds011ctl config init

  # Reset a mangled file back to defaults
  sds011ctl config init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}

		if err := config.NewSettings().Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Re-read from disk so edits made since startup are reflected
		settings, err := config.Reload()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}

		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n%s", path, data)
		return nil
	},
}

// wakeCmd restarts the fan and laser
var wakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Wake the sensor from sleep",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, sess, _, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer port.Close()

		if err := sess.Wake(); err != nil {
			return err
		}
		fmt.Println("Sensor awake")
		return nil
	},
}
