package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/syncengine"
)

func newLogCmd() *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "log <mapping-name-or-mount>",
		Short: "Show recent sync log entries from the SSD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, args[0], flagLimit)
		},
	}

	cmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum number of log lines to show (0 for all)")

	return cmd
}

func runLog(cmd *cobra.Command, arg string, limit int) error {
	rc := mustContext(cmd.Context())

	if _, err := resolveMapping(rc.cfg, arg); err != nil {
		return err
	}

	store := syncengine.NewSnapshotStore(rc.cfg.SSDMount)

	lines, err := store.TailLog(limit)
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}

	if len(lines) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no log entries yet")
		return nil
	}

	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	return nil
}
