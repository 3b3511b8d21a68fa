package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/config"
)

func newAddCmd() *cobra.Command {
	var flagName string

	cmd := &cobra.Command{
		Use:   "add <local-path> <ssd-relative-path>",
		Short: "Add a local-to-SSD mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], args[1], flagName)
		},
	}

	cmd.Flags().StringVar(&flagName, "name", "", "mapping name (default: derived from the local path's base name)")

	return cmd
}

func runAdd(cmd *cobra.Command, localRoot, ssdRelRoot, name string) error {
	rc := mustContext(cmd.Context())

	if name == "" {
		name = filepath.Base(localRoot)
	}

	mapping := config.MappingConfig{Name: name, LocalRoot: localRoot, SSDRelativeRoot: ssdRelRoot}
	if err := rc.cfg.AddMapping(mapping); err != nil {
		return err
	}

	if err := config.Save(rc.cfgPath, rc.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added mapping %q: %s <-> %s\n", name, localRoot, ssdRelRoot)

	return nil
}
