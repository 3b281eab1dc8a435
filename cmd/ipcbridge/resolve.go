package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/bazelment/yoloswe/ipcbridge/bridge"
)

var (
	resolveOS    string
	resolveArch  string
	resolveCheck bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the bridge binary path for a platform",
	Long: `Print where the bridge binary for the given platform lives under the
binary directory. With --check, the configured binary for this machine is
resolved the same way serve does and must exist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if resolveCheck {
			opts, err := bridgeOptions(newLogger())
			if err != nil {
				return err
			}
			b, err := bridge.New(opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, b.BinaryPath())
			return nil
		}

		dir := binaryDir
		if dir == "" {
			dir = bridge.DefaultBinaryDir()
		}
		path, err := bridge.ResolveBinaryPath(dir, resolveOS, resolveArch)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveOS, "os", runtime.GOOS, "Target operating system")
	resolveCmd.Flags().StringVar(&resolveArch, "arch", runtime.GOARCH, "Target architecture")
	resolveCmd.Flags().BoolVar(&resolveCheck, "check", false, "Resolve for this machine and require the binary to exist")
}
