package cmd

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Print the deduplicated crawl targets as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newSession(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		targets, err := rt.discover(ctx)
		if err != nil {
			return err
		}
		if targets == nil {
			targets = []core.Target{}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(targets)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
