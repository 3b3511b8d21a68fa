package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <machine-name>",
		Short: "Create or overwrite the local config header",
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			skipConfigAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args[0])
		},
	}

	return cmd
}

func runInit(cmd *cobra.Command, machine string) error {
	path := flagConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if path == "" {
		return fmt.Errorf("cannot determine default config path (HOME not set); pass --config")
	}

	cfg := config.DefaultConfig()
	cfg.Machine = machine

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ssd-syncer config for machine %q at %s\n", machine, path)

	return nil
}
