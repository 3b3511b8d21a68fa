package syncengine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	stdsync "sync"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/ssd-syncer/ssd-syncer/internal/pathutil"
)

// defaultHashWorkers bounds the number of goroutines hashing file contents
// concurrently. A removable SSD is usually the bottleneck, not CPU, so this
// stays modest rather than scaling with NumCPU.
const defaultHashWorkers = 4

// Scanner walks one side of a mapping and produces a StateMap: a cheap
// stat-only pass to find candidates, followed by a bounded-concurrency
// hashing pass that reuses the baseline's hash when size and truncated
// mtime both match.
type Scanner struct {
	logger      *slog.Logger
	hashWorkers int
}

// NewScanner creates a Scanner. A nil logger discards all log output.
func NewScanner(logger *slog.Logger, hashWorkers int) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if hashWorkers < 1 {
		hashWorkers = defaultHashWorkers
	}

	return &Scanner{logger: logger, hashWorkers: hashWorkers}
}

// statCandidate is a regular file found during the walk, awaiting the
// hash-reuse decision.
type statCandidate struct {
	relPath string
	size    int64
	mtime   time.Time
}

// Scan walks root and returns the StateMap observed there. baseline is the
// mapping's previous snapshot, used to avoid rehashing files whose size
// and truncated mtime are unchanged; it may be nil for a first-ever scan.
func (s *Scanner) Scan(ctx context.Context, side Side, root string, ignore *pathutil.Matcher, baseline StateMap) (StateMap, error) {
	s.logger.Debug("scanner: starting walk", "side", side, "root", root)

	candidates, err := s.walk(ctx, side, root, ignore)
	if err != nil {
		return nil, err
	}

	result, err := s.hashPhase(ctx, side, root, candidates, baseline)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scanner: walk complete", "side", side, "root", root, "files", len(result))

	return result, nil
}

// walk performs the cheap stat-only pass, collecting every non-ignored
// regular file under root. Symlinks are skipped; they are not part of the
// sync domain. A per-entry I/O error (permission denied, file vanished
// mid-scan) is recovered: the entry is logged and omitted, and the walk
// continues — only a missing or non-directory root is fatal.
func (s *Scanner) walk(ctx context.Context, side Side, root string, ignore *pathutil.Matcher) ([]statCandidate, error) {
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Side: side, Path: root, Err: err}
	}

	if !rootInfo.IsDir() {
		return nil, &ScanError{Side: side, Path: root, Err: fmt.Errorf("not a directory")}
	}

	var candidates []statCandidate

	err = filepath.WalkDir(root, func(fullPath string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			s.logger.Warn("scanner: recovered entry error", "side", side, "path", fullPath, "error", err)
			return nil
		}

		if fullPath == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, fullPath)
		if relErr != nil {
			s.logger.Warn("scanner: recovered entry error", "side", side, "path", fullPath, "error", relErr)
			return nil
		}

		relPath, normErr := pathutil.Normalize(rel)
		if normErr != nil {
			s.logger.Warn("scanner: recovered entry error", "side", side, "path", fullPath, "error", normErr)
			return nil
		}

		if ignore.Match(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			s.logger.Warn("scanner: recovered entry error", "side", side, "path", fullPath, "error", infoErr)
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 || !info.Mode().IsRegular() {
			return nil
		}

		candidates = append(candidates, statCandidate{
			relPath: relPath,
			size:    info.Size(),
			mtime:   info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, &ScanError{Side: side, Path: root, Err: err}
	}

	return candidates, nil
}

// hashPhase resolves a FileState for every candidate, reusing the baseline
// hash when size and truncated mtime match and computing a fresh BLAKE3-256
// digest otherwise. Hashing runs on a bounded errgroup so a large initial
// scan doesn't open thousands of files at once. A file that fails to hash
// (vanished between the stat pass and now, permission revoked) is recovered:
// logged and omitted from the result, matching walk's per-entry recovery —
// only ctx cancellation aborts the whole phase.
func (s *Scanner) hashPhase(ctx context.Context, side Side, root string, candidates []statCandidate, baseline StateMap) (StateMap, error) {
	result := make(StateMap, len(candidates))

	var mu stdsync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.hashWorkers)

	for _, c := range candidates {
		c := c
		mtime := TruncateToSeconds(c.mtime)

		if prior, ok := baseline[c.relPath]; ok && prior.Hash != nil && prior.Size == c.size &&
			prior.Mtime.Equal(mtime) {
			mu.Lock()
			result[c.relPath] = FileState{Size: c.size, Mtime: mtime, Hash: prior.Hash}
			mu.Unlock()

			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fullPath := filepath.Join(root, filepath.FromSlash(c.relPath))

			hash, err := hashFile(fullPath)
			if err != nil {
				s.logger.Warn("scanner: recovered hash error", "side", side, "path", c.relPath, "error", err)
				return nil
			}

			mu.Lock()
			result[c.relPath] = FileState{Size: c.size, Mtime: mtime, Hash: &hash}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &ScanError{Side: side, Path: root, Err: ErrAborted}
	}

	return result, nil
}

// hashFile computes the BLAKE3-256 digest of a file's contents.
func hashFile(path string) ([32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening file for hash: %w", err)
	}
	defer f.Close()

	h := blake3.New()

	if _, err := io.Copy(h, f); err != nil {
		return [32]byte{}, fmt.Errorf("hashing file: %w", err)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))

	return out, nil
}

// TruncateToSeconds truncates a time.Time to whole-second resolution so
// comparisons are stable across filesystems with differing mtime
// granularity (some report whole seconds, others nanoseconds).
func TruncateToSeconds(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
