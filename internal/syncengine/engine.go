package syncengine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ssd-syncer/ssd-syncer/internal/pathutil"
)

// Engine wires the Path & Ignore Resolver, Scanner, Snapshot Store, Change
// Classifier, Merge Planner, and Plan Executor into a single sync run.
type Engine struct {
	machine     string
	ssdMount    string
	store       *SnapshotStore
	scanner     *Scanner
	executor    *Executor
	observer    Observer
	logger      *slog.Logger
	strategy    ConflictStrategy
	asker       ConflictAsker
	hashWorkers int
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithConflictStrategy sets the default ConflictStrategy for all runs.
func WithConflictStrategy(s ConflictStrategy) EngineOption {
	return func(e *Engine) { e.strategy = s }
}

// WithConflictAsker wires an interactive resolver for the Ask strategy.
func WithConflictAsker(a ConflictAsker) EngineOption {
	return func(e *Engine) { e.asker = a }
}

// WithObserver wires a callback receiver for plan ops and phase transitions.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observer = o }
}

// WithHashWorkers overrides the Scanner's hashing concurrency.
func WithHashWorkers(n int) EngineOption {
	return func(e *Engine) { e.hashWorkers = n }
}

// NewEngine creates an Engine for the given machine name and SSD mount path.
// A nil logger discards all log output.
func NewEngine(machine, ssdMount string, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		machine:  machine,
		ssdMount: ssdMount,
		store:    NewSnapshotStore(ssdMount),
		logger:   logger,
		strategy: StrategyBoth,
		observer: NoopObserver{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.observer == nil {
		e.observer = NoopObserver{}
	}

	e.scanner = NewScanner(logger, e.hashWorkers)
	e.executor = NewExecutor(logger, e.observer)

	return e
}

// RunOptions configures a single sync run.
type RunOptions struct {
	DryRun bool
}

// Run executes one full sync cycle for mapping: acquire the mapping's lock,
// scan both sides in parallel, classify against the baseline, plan, execute
// (unless DryRun), and persist the resulting snapshot and log entry.
func (e *Engine) Run(ctx context.Context, mapping Mapping, ignore *pathutil.Matcher, opts RunOptions) (*RunReport, error) {
	if _, err := os.Stat(e.ssdMount); err != nil {
		return nil, &EnvironmentError{Op: "mount-check", Path: e.ssdMount, Err: ErrNotMounted}
	}

	lock, err := AcquireLock(e.store.LockPath(e.machine, mapping.Name))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	e.observer.OnPhase(PhaseScanning, mapping.Name)

	ssdItemRoot := filepath.Join(e.ssdMount, filepath.FromSlash(mapping.SSDRelativeRoot))
	if err := os.MkdirAll(ssdItemRoot, dirPermissions); err != nil {
		return nil, &EnvironmentError{Op: "mkdir", Path: ssdItemRoot, Err: err}
	}

	baseline, err := e.store.Load(e.machine, mapping.Name)
	if err != nil {
		return nil, err
	}

	local, ssd, err := e.scanBothSides(ctx, mapping.LocalRoot, ssdItemRoot, ignore, baseline.State)
	if err != nil {
		e.logFailure(mapping.Name, opts.DryRun, err)
		return nil, err
	}

	e.observer.OnPhase(PhaseClassifying, mapping.Name)
	classifications := Classify(local, ssd, baseline.State)

	e.observer.OnPhase(PhasePlanning, mapping.Name)

	now := time.Now()

	items, err := Plan(ctx, classifications, e.strategy, e.machine, now, e.asker)
	if err != nil {
		e.logFailure(mapping.Name, opts.DryRun, err)
		return nil, err
	}

	if opts.DryRun {
		e.observer.OnPhase(PhaseDryRunReport, mapping.Name)
	} else {
		e.observer.OnPhase(PhaseExecuting, mapping.Name)
	}

	report, merged, err := e.executor.Execute(ctx, mapping.LocalRoot, ssdItemRoot, local, items, opts.DryRun)
	if err != nil {
		e.logFailure(mapping.Name, opts.DryRun, err)
		return report, err
	}

	report.Mapping = mapping.Name

	if opts.DryRun {
		e.observer.OnPhase(PhaseIdle, mapping.Name)
		return report, nil
	}

	e.observer.OnPhase(PhaseSnapshotWrite, mapping.Name)

	if err := e.store.Store(e.machine, mapping.Name, merged, now); err != nil {
		e.logFailure(mapping.Name, opts.DryRun, err)
		return report, err
	}

	e.observer.OnPhase(PhaseLogAppend, mapping.Name)
	e.appendSuccessLog(mapping.Name, report)

	e.observer.OnPhase(PhaseIdle, mapping.Name)

	return report, nil
}

// scanBothSides runs the local and SSD scans concurrently via an errgroup, matching the data flow's "Scanner (×2)" step. Either side's
// fatal error aborts the other via context cancellation.
func (e *Engine) scanBothSides(ctx context.Context, localRoot, ssdRoot string, ignore *pathutil.Matcher, baseline StateMap) (local, ssd StateMap, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var scanErr error
		local, scanErr = e.scanner.Scan(gctx, SideLocal, localRoot, ignore, baseline)
		return scanErr
	})

	g.Go(func() error {
		var scanErr error
		ssd, scanErr = e.scanner.Scan(gctx, SideSSD, ssdRoot, ignore, baseline)
		return scanErr
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return local, ssd, nil
}

func (e *Engine) logFailure(mapping string, dryRun bool, cause error) {
	line := fmt.Sprintf("%s machine=%s mapping=%s dry_run=%t result=failed error=%q",
		time.Now().UTC().Format(time.RFC3339), e.machine, mapping, dryRun, cause.Error())

	if err := e.store.AppendLog(line); err != nil {
		e.logger.Warn("engine: failed to append failure log entry", "error", err)
	}
}

func (e *Engine) appendSuccessLog(mapping string, report *RunReport) {
	line := fmt.Sprintf("%s run=%s machine=%s mapping=%s dry_run=%t result=ok",
		report.Finished.UTC().Format(time.RFC3339), report.RunID, e.machine, mapping, report.DryRun)

	for op, count := range report.Counts {
		line += fmt.Sprintf(" %s=%d", op, count)
	}

	if err := e.store.AppendLog(line); err != nil {
		e.logger.Warn("engine: failed to append log entry", "error", err)
	}
}
