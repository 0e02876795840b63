package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the sync position",
	Long: `Clears the persisted last-sync timestamp so the next sync fetches
from the beginning. Existing documents are untouched: items already in
the notebook are detected and skipped.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if syncer == nil {
		return errors.New("sync service not configured")
	}
	if err := syncer.ResetCursor(); err != nil {
		return err
	}
	cmd.Println("Sync position reset. The next sync fetches from the beginning.")
	return nil
}
