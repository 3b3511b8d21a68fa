package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/syncengine"
)

func newSyncCmd() *cobra.Command {
	var flagDryRun bool

	cmd := &cobra.Command{
		Use:   "sync <mapping-name-or-mount>",
		Short: "Synchronize local and SSD state for a mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args[0], flagDryRun)
		},
	}

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report what would change without mutating the filesystem")

	return cmd
}

func runSync(cmd *cobra.Command, arg string, dryRun bool) error {
	rc := mustContext(cmd.Context())

	mapping, err := resolveMapping(rc.cfg, arg)
	if err != nil {
		return err
	}

	matcher, err := buildMatcher(rc.cfg)
	if err != nil {
		return err
	}

	observer := newReportingObserver(cmd.OutOrStdout(), flagVerbose)
	engine := buildEngine(rc, observer)

	report, err := engine.Run(cmd.Context(), mapping.ToEngineMapping(), matcher, syncengine.RunOptions{DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("sync %q: %w", mapping.Name, err)
	}

	if rc.jsonOutput {
		return printReportJSON(cmd.OutOrStdout(), mapping.Name, report, false)
	}

	printSyncSummary(cmd, mapping.Name, report)

	return nil
}

func printSyncSummary(cmd *cobra.Command, mappingName string, report *syncengine.RunReport) {
	verb := "Synced"
	if report.DryRun {
		verb = "Dry-run for"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %q: %d change(s) in %s\n", verb, mappingName, report.TotalChanges(), report.Duration().Round(time.Millisecond))

	for _, op := range orderedOps {
		if n := report.Counts[op]; n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %d\n", op, n)
		}
	}

	if len(report.Errored) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d path(s) failed:\n", len(report.Errored))

		for _, pe := range report.Errored {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", pe.Path, pe.Err)
		}
	}
}

// orderedOps lists PlanOp kinds in a stable, human-meaningful order for
// summary output.
var orderedOps = []syncengine.PlanOp{
	syncengine.CopyLocalToSSD,
	syncengine.CopySSDToLocal,
	syncengine.DeleteLocal,
	syncengine.DeleteSSD,
	syncengine.ConflictBoth,
	syncengine.ConflictLocalWins,
	syncengine.ConflictSSDWins,
	syncengine.Noop,
}
