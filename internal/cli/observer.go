package cli

import (
	"fmt"
	"io"

	"github.com/ssd-syncer/ssd-syncer/internal/syncengine"
)

// reportingObserver prints each non-Noop plan op as it executes (or would
// execute, in dry-run mode) when verbose is set. Phase transitions are
// ignored.
type reportingObserver struct {
	w       io.Writer
	verbose bool
}

func newReportingObserver(w io.Writer, verbose bool) *reportingObserver {
	return &reportingObserver{w: w, verbose: verbose}
}

func (o *reportingObserver) OnPlanOp(op syncengine.PlanOp, path string, dryRun bool) {
	if !o.verbose || op == syncengine.Noop {
		return
	}

	verb := "would " + op.String()
	if !dryRun {
		verb = op.String()
	}

	fmt.Fprintf(o.w, "%-24s %s\n", verb, path)
}

func (o *reportingObserver) OnPhase(syncengine.Phase, string) {}
