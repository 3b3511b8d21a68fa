package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/syncengine"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <mapping-name-or-mount>",
		Short: "Show pending change counts for a mapping without applying them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args[0])
		},
	}
}

func runStatus(cmd *cobra.Command, arg string) error {
	rc := mustContext(cmd.Context())

	mapping, err := resolveMapping(rc.cfg, arg)
	if err != nil {
		return err
	}

	matcher, err := buildMatcher(rc.cfg)
	if err != nil {
		return err
	}

	engine := buildEngine(rc, syncengine.NoopObserver{})

	report, err := engine.Run(cmd.Context(), mapping.ToEngineMapping(), matcher, syncengine.RunOptions{DryRun: true})
	if err != nil {
		return fmt.Errorf("status %q: %w", mapping.Name, err)
	}

	if rc.jsonOutput {
		return printReportJSON(cmd.OutOrStdout(), mapping.Name, report, false)
	}

	if report.TotalChanges() == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%q is up to date\n", mapping.Name)
		return nil
	}

	headers := []string{"OP", "COUNT"}

	var rows [][]string

	for _, op := range orderedOps {
		if n := report.Counts[op]; n > 0 {
			rows = append(rows, []string{op.String(), fmt.Sprintf("%d", n)})
		}
	}

	printTable(cmd.OutOrStdout(), headers, rows)

	return nil
}
