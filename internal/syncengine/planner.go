package syncengine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ssd-syncer/ssd-syncer/internal/pathutil"
)

// conflictSuffix formats the conflict-rename suffix appended to a file's
// full name (including extension): ".conflict.<machine>.<unix_seconds>".
func conflictSuffix(machine string, at time.Time) string {
	return fmt.Sprintf(".conflict.%s.%d", machine, at.Unix())
}

// Plan turns a set of per-path classifications into an ordered list of
// PlanItems to execute. now is used both as the conflict-rename timestamp
// and as the implied timestamp of any deletion (deletions carry no mtime of
// their own).
func Plan(ctx context.Context, classifications []PathClassification, strategy ConflictStrategy, machine string, now time.Time, asker ConflictAsker) ([]PlanItem, error) {
	items := make([]PlanItem, 0, len(classifications))

	for _, pc := range classifications {
		item, err := planOne(ctx, pc, strategy, machine, now, asker)
		if err != nil {
			return nil, err
		}

		item.Path = pc.Path
		item.LocalState = pc.Local
		item.SSDState = pc.SSD
		items = append(items, item)
	}

	sortPlan(items)

	return items, nil
}

// planOne resolves the decision-table cell for a single path, applying the
// conflict equivalence bypass and, for conflicting cells, the configured
// ConflictStrategy.
func planOne(ctx context.Context, pc PathClassification, strategy ConflictStrategy, machine string, now time.Time, asker ConflictAsker) (PlanItem, error) {
	local, ssd := pc.LocalChange, pc.SSDChange

	switch {
	case local == Unchanged && ssd == Unchanged:
		return PlanItem{Op: Noop}, nil
	case local == Unchanged && ssd == Created:
		return PlanItem{Op: CopySSDToLocal}, nil
	case local == Unchanged && ssd == Modified:
		return PlanItem{Op: CopySSDToLocal}, nil
	case local == Unchanged && ssd == Deleted:
		return PlanItem{Op: DeleteLocal}, nil
	case local == Created && ssd == Unchanged:
		return PlanItem{Op: CopyLocalToSSD}, nil
	case local == Modified && ssd == Unchanged:
		return PlanItem{Op: CopyLocalToSSD}, nil
	case local == Deleted && ssd == Unchanged:
		return PlanItem{Op: DeleteSSD}, nil
	case local == Deleted && ssd == Deleted:
		return PlanItem{Op: Noop}, nil
	}

	// Everything else is a conflict: create/create, mod/mod, mod/del, del/mod,
	// and any defensively-treated "unreachable" combination.
	if (local == Created && ssd == Created) || (local == Modified && ssd == Modified) {
		if pc.Local != nil && pc.SSD != nil && pc.Local.Hash != nil && pc.SSD.Hash != nil && *pc.Local.Hash == *pc.SSD.Hash {
			return PlanItem{Op: Noop}, nil
		}
	}

	return resolveConflict(ctx, pc, strategy, machine, now, asker)
}

// resolveConflict applies the ConflictStrategy to a path whose decision-table
// cell is (or is defensively treated as) a conflict.
func resolveConflict(ctx context.Context, pc PathClassification, strategy ConflictStrategy, machine string, now time.Time, asker ConflictAsker) (PlanItem, error) {
	if strategy == StrategyAsk {
		if asker == nil {
			strategy = StrategyBoth
		} else {
			resolved, err := asker.AskConflict(ctx, pc.Path, pc.Local, pc.SSD)
			if err != nil {
				return PlanItem{}, fmt.Errorf("syncengine: asking conflict resolution for %q: %w", pc.Path, err)
			}

			strategy = resolved
			if strategy == StrategyAsk {
				strategy = StrategyBoth
			}
		}
	}

	// mod/del and del/mod: Both overrides the deletion unconditionally,
	// re-propagating the surviving modified file to the side that deleted it,
	// with no rename.
	if pc.LocalChange == Modified && pc.SSDChange == Deleted && strategy == StrategyBoth {
		return PlanItem{Op: ConflictLocalWins}, nil
	}

	if pc.LocalChange == Deleted && pc.SSDChange == Modified && strategy == StrategyBoth {
		return PlanItem{Op: ConflictSSDWins}, nil
	}

	switch strategy {
	case StrategyLocalWins:
		return PlanItem{Op: ConflictLocalWins}, nil
	case StrategySSDWins:
		return PlanItem{Op: ConflictSSDWins}, nil
	case StrategyNewerWins:
		if newerSideIsLocal(pc, now) {
			return PlanItem{Op: ConflictLocalWins}, nil
		}

		return PlanItem{Op: ConflictSSDWins}, nil
	default: // StrategyBoth
		return PlanItem{Op: ConflictBoth, LocalSuffix: conflictSuffix(machine, now)}, nil
	}
}

// newerSideIsLocal reports whether local's mtime is strictly greater than
// ssd's. A side that was deleted has no mtime of its own; the moment the
// plan is computed (now) stands in for the deletion's implied timestamp.
// Ties are broken toward local.
func newerSideIsLocal(pc PathClassification, now time.Time) bool {
	localMtime := now
	if pc.Local != nil {
		localMtime = pc.Local.Mtime
	}

	ssdMtime := now
	if pc.SSD != nil {
		ssdMtime = pc.SSD.Mtime
	}

	return !ssdMtime.After(localMtime)
}

// planOrderClass groups a PlanItem for ordering: deletions first (deepest
// path first), then copies (shallowest first, so parents exist before
// children), then Both-strategy conflict renames last.
func planOrderClass(item PlanItem) int {
	switch item.Op {
	case DeleteLocal, DeleteSSD:
		return 0
	case ConflictLocalWins:
		if item.LocalState == nil {
			return 0 // local deleted, propagating the deletion to ssd
		}

		return 1
	case ConflictSSDWins:
		if item.SSDState == nil {
			return 0 // ssd deleted, propagating the deletion to local
		}

		return 1
	case ConflictBoth:
		return 2
	default:
		return 1
	}
}

// sortPlan orders items per the Merge Planner's ordering guarantee:
// deletions (deepest-first) — copies (shallowest-first, parents before
// children) — Both-conflict renames last. Within a class, lexicographic by
// path.
func sortPlan(items []PlanItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := planOrderClass(items[i]), planOrderClass(items[j])
		if ci != cj {
			return ci < cj
		}

		if ci == 0 { // deletions: deepest first
			di, dj := pathutil.Depth(items[i].Path), pathutil.Depth(items[j].Path)
			if di != dj {
				return di > dj
			}
		} else if ci == 1 { // copies: shallowest first
			di, dj := pathutil.Depth(items[i].Path), pathutil.Depth(items[j].Path)
			if di != dj {
				return di < dj
			}
		}

		return items[i].Path < items[j].Path
	})
}
