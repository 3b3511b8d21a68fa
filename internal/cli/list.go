package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	rc := mustContext(cmd.Context())

	if len(rc.cfg.Mappings) == 0 {
		statusf(flagQuiet, "no mappings configured; add one with 'ssd-syncer add'\n")
		return nil
	}

	headers := []string{"NAME", "LOCAL", "SSD"}

	rows := make([][]string, 0, len(rc.cfg.Mappings))
	for _, m := range rc.cfg.Mappings {
		rows = append(rows, []string{m.Name, m.LocalRoot, m.SSDRelativeRoot})
	}

	printTable(cmd.OutOrStdout(), headers, rows)

	return nil
}
