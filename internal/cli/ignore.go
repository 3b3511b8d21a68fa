package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/config"
)

func newIgnoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage ignore patterns",
	}

	cmd.AddCommand(newIgnoreListCmd())
	cmd.AddCommand(newIgnoreResetCmd())
	cmd.AddCommand(newIgnoreAddCmd())
	cmd.AddCommand(newIgnoreRemoveCmd())

	return cmd
}

func newIgnoreListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured ignore patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc := mustContext(cmd.Context())

			if len(rc.cfg.Ignore) == 0 {
				statusf(flagQuiet, "no ignore patterns configured\n")
				return nil
			}

			for _, p := range rc.cfg.Ignore {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}

			return nil
		},
	}
}

func newIgnoreResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [pattern...]",
		Short: "Replace the ignore pattern list wholesale",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateIgnore(cmd, func(cfg *config.Config) error {
				cfg.ResetIgnore(args)
				return nil
			}, "Ignore patterns reset")
		},
	}
}

func newIgnoreAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add an ignore pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateIgnore(cmd, func(cfg *config.Config) error {
				cfg.AddIgnore(args[0])
				return nil
			}, fmt.Sprintf("Added ignore pattern %q", args[0]))
		},
	}
}

func newIgnoreRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <pattern>",
		Short: "Remove an ignore pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateIgnore(cmd, func(cfg *config.Config) error {
				if !cfg.RemoveIgnore(args[0]) {
					return fmt.Errorf("pattern %q not found", args[0])
				}

				return nil
			}, fmt.Sprintf("Removed ignore pattern %q", args[0]))
		},
	}
}

// mutateIgnore applies mutate to the loaded config, validates, persists,
// and prints successMsg on success.
func mutateIgnore(cmd *cobra.Command, mutate func(*config.Config) error, successMsg string) error {
	rc := mustContext(cmd.Context())

	if err := mutate(rc.cfg); err != nil {
		return err
	}

	if err := config.Validate(rc.cfg); err != nil {
		return err
	}

	if err := config.Save(rc.cfgPath, rc.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successMsg)

	return nil
}
