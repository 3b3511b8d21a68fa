package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/syncengine"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <mapping-name-or-mount>",
		Short: "Show the per-path plan for a mapping without applying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0])
		},
	}
}

func runDiff(cmd *cobra.Command, arg string) error {
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
		return fmt.Errorf("diff %q: %w", mapping.Name, err)
	}

	if rc.jsonOutput {
		return printReportJSON(cmd.OutOrStdout(), mapping.Name, report, true)
	}

	items := make([]syncengine.PlanItem, 0, len(report.Items))

	for _, item := range report.Items {
		if item.Op != syncengine.Noop {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%q is up to date\n", mapping.Name)
		return nil
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })

	for _, item := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", item.Op, item.Path)
	}

	return nil
}
