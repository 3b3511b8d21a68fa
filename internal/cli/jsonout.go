package cli

import (
	"encoding/json"
	"io"

	"github.com/ssd-syncer/ssd-syncer/internal/syncengine"
)

// syncJSONOutput is the JSON output schema shared by sync/status/diff,
// following the teacher's one-struct-per-command JSON schema convention.
type syncJSONOutput struct {
	RunID      string          `json:"run_id"`
	Mapping    string          `json:"mapping"`
	DryRun     bool            `json:"dry_run"`
	DurationMs int64           `json:"duration_ms"`
	Counts     map[string]int  `json:"counts"`
	Items      []syncJSONItem  `json:"items,omitempty"`
	Errors     []syncJSONError `json:"errors"`
}

// syncJSONItem represents one non-Noop PlanItem, included when the caller
// asked for per-path detail (diff) rather than just counts (status/sync).
type syncJSONItem struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// syncJSONError represents a single failed path.
type syncJSONError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// printReportJSON encodes report as indented JSON to w. includeItems
// controls whether every non-Noop PlanItem is emitted (diff) or only
// aggregate counts (sync, status).
func printReportJSON(w io.Writer, mapping string, report *syncengine.RunReport, includeItems bool) error {
	counts := make(map[string]int, len(report.Counts))
	for op, n := range report.Counts {
		counts[op.String()] = n
	}

	errs := make([]syncJSONError, 0, len(report.Errored))
	for _, pe := range report.Errored {
		errs = append(errs, syncJSONError{Path: pe.Path, Error: pe.Err.Error()})
	}

	out := syncJSONOutput{
		RunID:      report.RunID,
		Mapping:    mapping,
		DryRun:     report.DryRun,
		DurationMs: report.Duration().Milliseconds(),
		Counts:     counts,
		Errors:     errs,
	}

	if includeItems {
		for _, item := range report.Items {
			if item.Op == syncengine.Noop {
				continue
			}

			out.Items = append(out.Items, syncJSONItem{Path: item.Path, Op: item.Op.String()})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
