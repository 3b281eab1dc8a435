// Command ipcbridge runs the ipc-json-bridge under supervision and inspects
// its installation.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bazelment/yoloswe/ipcbridge/bridge"
)

var (
	configPath string
	binaryDir  string
	binaryPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ipcbridge",
	Short: "Supervise the ipc-json-bridge subprocess",
	Long: `ipcbridge spawns the ipc-json-bridge binary, waits for its ready
handshake, and logs the client connections and messages it relays.
Settings are read from .ipcbridge.yaml; flags take precedence.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", bridge.DefaultConfigFile, "Path to the YAML config file (ignored if missing)")
	rootCmd.PersistentFlags().StringVar(&binaryDir, "binary-dir", "", "Root of the bin/<os>/<arch> tree (default: <executable dir>/bin)")
	rootCmd.PersistentFlags().StringVar(&binaryPath, "binary", "", "Explicit bridge binary; skips platform resolution")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger creates a structured logger with the configured verbosity.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// bridgeOptions layers the config file, the persistent flags and extra, in
// that order, so later settings win.
func bridgeOptions(logger *slog.Logger, extra ...bridge.Option) ([]bridge.Option, error) {
	fc, err := bridge.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	opts := fc.Options()
	if binaryDir != "" {
		opts = append(opts, bridge.WithBinaryDir(binaryDir))
	}
	if binaryPath != "" {
		opts = append(opts, bridge.WithBinaryPath(binaryPath))
	}
	opts = append(opts, bridge.WithLogger(logger))
	return append(opts, extra...), nil
}
