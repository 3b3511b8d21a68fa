package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/config"
)

func newSetSSDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-ssd <mount-path>",
		Short: "Set the default SSD mount path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetSSD(cmd, args[0])
		},
	}
}

func runSetSSD(cmd *cobra.Command, mount string) error {
	rc := mustContext(cmd.Context())

	rc.cfg.SSDMount = mount

	if err := config.Validate(rc.cfg); err != nil {
		return err
	}

	if err := config.Save(rc.cfgPath, rc.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Default SSD mount set to %s\n", mount)

	return nil
}
