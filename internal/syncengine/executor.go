package syncengine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Executor applies an ordered plan to the filesystem. A nil Observer is
// treated as NoopObserver{}.
type Executor struct {
	logger   *slog.Logger
	observer Observer
}

// NewExecutor creates an Executor. A nil logger discards all log output.
func NewExecutor(logger *slog.Logger, observer Observer) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if observer == nil {
		observer = NoopObserver{}
	}

	return &Executor{logger: logger, observer: observer}
}

// Execute applies items in order against localRoot and ssdRoot. On dry-run,
// every item is reported to the observer but nothing is mutated and no
// resulting StateMap is produced. On a real run, it stops at the first
// failing op — remaining ops are skipped, matching commit-or-nothing — and
// returns a nil StateMap with the error. When every op succeeds it returns
// the merged StateMap that both sides now agree on, which the caller
// persists as the new baseline.
func (e *Executor) Execute(ctx context.Context, localRoot, ssdRoot string, local StateMap, items []PlanItem, dryRun bool) (*RunReport, StateMap, error) {
	report := &RunReport{
		RunID:   uuid.NewString(),
		DryRun:  dryRun,
		Started: time.Now(),
		Items:   items,
		Counts:  make(map[PlanOp]int),
	}

	merged := make(StateMap, len(local))
	for p, fs := range local {
		merged[p] = fs
	}

	for _, item := range items {
		report.Counts[item.Op]++
		e.observer.OnPlanOp(item.Op, item.Path, dryRun)

		if dryRun {
			continue
		}

		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, nil, ErrAborted
		}

		newState, err := e.applyItem(localRoot, ssdRoot, item)
		if err != nil {
			report.Errored = append(report.Errored, PathError{Path: item.Path, Err: err})
			report.Finished = time.Now()

			return report, nil, err
		}

		applyToMerged(merged, item, newState)
	}

	report.Finished = time.Now()

	if dryRun {
		return report, nil, nil
	}

	return report, merged, nil
}

// applyToMerged updates merged (the post-run agreed StateMap) for a single
// applied item. Deletions remove the path; copies and conflict resolutions
// that result in a copy set the path to newState; ConflictBoth's renamed
// backup is intentionally not added here — it lives only on local and is
// picked up as an ordinary new file on the next scan.
func applyToMerged(merged StateMap, item PlanItem, newState *FileState) {
	switch item.Op {
	case Noop:
		return
	case DeleteLocal, DeleteSSD:
		delete(merged, item.Path)
	case ConflictLocalWins:
		if item.LocalState == nil {
			delete(merged, item.Path)
		} else if newState != nil {
			merged[item.Path] = *newState
		}
	case ConflictSSDWins:
		if item.SSDState == nil {
			delete(merged, item.Path)
		} else if newState != nil {
			merged[item.Path] = *newState
		}
	default:
		if newState != nil {
			merged[item.Path] = *newState
		}
	}
}

// applyItem performs the filesystem mutation for a single PlanItem and
// returns the resulting FileState for the path both sides now agree on
// (nil for deletions).
func (e *Executor) applyItem(localRoot, ssdRoot string, item PlanItem) (*FileState, error) {
	localPath := filepath.Join(localRoot, filepath.FromSlash(item.Path))
	ssdPath := filepath.Join(ssdRoot, filepath.FromSlash(item.Path))

	switch item.Op {
	case Noop:
		return nil, nil //nolint:nilnil // Noop has no resulting state to report

	case CopyLocalToSSD:
		return e.copyAndReport(item.Path, localPath, ssdPath, CopyLocalToSSD)

	case CopySSDToLocal:
		return e.copyAndReport(item.Path, ssdPath, localPath, CopySSDToLocal)

	case DeleteLocal:
		return nil, e.deleteAndPrune(item.Path, localRoot, localPath, DeleteLocal)

	case DeleteSSD:
		return nil, e.deleteAndPrune(item.Path, ssdRoot, ssdPath, DeleteSSD)

	case ConflictLocalWins:
		if item.LocalState == nil {
			return nil, e.deleteAndPrune(item.Path, ssdRoot, ssdPath, ConflictLocalWins)
		}

		return e.copyAndReport(item.Path, localPath, ssdPath, ConflictLocalWins)

	case ConflictSSDWins:
		if item.SSDState == nil {
			return nil, e.deleteAndPrune(item.Path, localRoot, localPath, ConflictSSDWins)
		}

		return e.copyAndReport(item.Path, ssdPath, localPath, ConflictSSDWins)

	case ConflictBoth:
		renamedPath := localPath + item.LocalSuffix

		if _, statErr := os.Stat(localPath); statErr == nil {
			if err := os.Rename(localPath, renamedPath); err != nil {
				return nil, &ExecError{Op: ConflictBoth, Path: item.Path, Err: err}
			}
		}

		return e.copyAndReport(item.Path, ssdPath, localPath, ConflictBoth)

	default:
		return nil, &ExecError{Op: item.Op, Path: item.Path, Err: fmt.Errorf("unhandled plan op %s", item.Op)}
	}
}

func (e *Executor) copyAndReport(relPath, src, dst string, op PlanOp) (*FileState, error) {
	state, err := copyFile(src, dst)
	if err != nil {
		return nil, &ExecError{Op: op, Path: relPath, Err: err}
	}

	return state, nil
}

func (e *Executor) deleteAndPrune(relPath, root, fullPath string, op PlanOp) error {
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return &ExecError{Op: op, Path: relPath, Err: err}
	}

	pruneEmptyAncestors(root, filepath.Dir(fullPath))

	return nil
}

// copyFile writes src's content to a sibling temp file of dst, fsyncs it,
// renames it over dst, then best-effort sets dst's mtime to src's. The
// digest is computed in the same pass as the copy so the caller never needs
// to reopen the file to learn its hash.
func copyFile(src, dst string) (*FileState, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat source %q: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating parent directory for %q: %w", dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening source %q: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file for %q: %w", dst, err)
	}

	tempPath := tmp.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	hasher := blake3.New()
	writer := io.MultiWriter(tmp, hasher)

	if _, err := io.Copy(writer, in); err != nil {
		tmp.Close()

		return nil, fmt.Errorf("copying %q: %w", src, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()

		return nil, fmt.Errorf("syncing %q: %w", dst, err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file for %q: %w", dst, err)
	}

	if err := os.Chmod(tempPath, filePermissions); err != nil {
		return nil, fmt.Errorf("setting permissions on %q: %w", dst, err)
	}

	if err := os.Rename(tempPath, dst); err != nil {
		return nil, fmt.Errorf("renaming into place %q: %w", dst, err)
	}

	succeeded = true

	mtime := info.ModTime()
	// Best effort per the executor's mtime-propagation contract: failure
	// here does not fail the copy.
	_ = os.Chtimes(dst, mtime, mtime)

	var hash [32]byte
	copy(hash[:], hasher.Sum(nil))

	return &FileState{Size: info.Size(), Mtime: TruncateToSeconds(mtime), Hash: &hash}, nil
}

// pruneEmptyAncestors removes dir and its empty ancestors, stopping at (and
// never removing) root itself.
func pruneEmptyAncestors(root, dir string) {
	cleanRoot := filepath.Clean(root)

	for {
		cleanDir := filepath.Clean(dir)
		if cleanDir == cleanRoot {
			return
		}

		rel, err := filepath.Rel(cleanRoot, cleanDir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			return
		}

		entries, err := os.ReadDir(cleanDir)
		if err != nil || len(entries) > 0 {
			return
		}

		if err := os.Remove(cleanDir); err != nil {
			return
		}

		dir = filepath.Dir(cleanDir)
	}
}
