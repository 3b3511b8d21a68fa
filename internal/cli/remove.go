package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/config"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <mapping-name>",
		Short: "Remove a mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args[0])
		},
	}
}

func runRemove(cmd *cobra.Command, name string) error {
	rc := mustContext(cmd.Context())

	if !rc.cfg.RemoveMapping(name) {
		return fmt.Errorf("mapping %q not found", name)
	}

	if err := config.Save(rc.cfgPath, rc.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed mapping %q\n", name)

	return nil
}
