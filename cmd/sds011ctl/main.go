// Sds011ctl reads and configures Nova Fitness SDS011 particulate matter
// sensors attached over a serial port.
//
// It provides a continuous reading loop, a live terminal view, a WebSocket
// streaming server, and direct configuration commands (work period, report
// mode, device ID, sleep/wake).
//
// Usage:
//
//	sds011ctl [command] [flags]
//
// Running without arguments starts the continuous reading loop.
// See 'sds011ctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/airsense/sds011/internal/logging"
	"github.com/airsense/sds011/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sds011ctl",
	Short: "SDS011 Particulate Matter Sensor Tool",
	Long: `A driver and control utility for Nova Fitness SDS011 dust sensors.

Reads PM2.5/PM10 measurements over a serial port and configures the
sensor's work period, report mode, and device ID.

If no command is specified, the continuous reading loop starts.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: read continuously when no subcommand provided
		return runRead(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sds011ctl %s\n", version.Full())
	},
}
