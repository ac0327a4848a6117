// Command wotpulse runs the delayed identity-rescore coordinator: a
// DelayedJob wired to a directory of incoming identity XML files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/wotpulse/cmd/wotpulse/commands"
	"github.com/teranos/wotpulse/internal/obslog"
)

var rootCmd = &cobra.Command{
	Use:   "wotpulse",
	Short: "wotpulse - delayed deduplicating background job coordinator",
	Long: `wotpulse coalesces bursts of identity-file arrivals into a single
rescore pass per quiescence window.

Available commands:
  run      - start the coordinator and identity queue watcher
  trigger  - drop a synthetic identity file into the watched queue
  status   - print the state of a locally constructed coordinator`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json-logs")
		if err := obslog.Initialize(jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "emit logs as JSON instead of the console format")
	rootCmd.PersistentFlags().String("config", "", "path to a wotpulse.toml config file")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.TriggerCmd)
	rootCmd.AddCommand(commands.StatusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
