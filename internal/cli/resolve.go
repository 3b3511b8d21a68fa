package cli

import (
	"fmt"

	"github.com/ssd-syncer/ssd-syncer/internal/config"
	"github.com/ssd-syncer/ssd-syncer/internal/pathutil"
	"github.com/ssd-syncer/ssd-syncer/internal/syncengine"
)

// resolveMapping looks up the mapping-name-or-mount argument shared by
// sync/status/diff/log against the loaded config.
func resolveMapping(cfg *config.Config, arg string) (config.MappingConfig, error) {
	if cfg.SSDMount == "" {
		return config.MappingConfig{}, fmt.Errorf("no SSD mount configured; run 'ssd-syncer set-ssd' first")
	}

	m, ok := cfg.MappingBySSDMountOrName(arg)
	if !ok {
		return config.MappingConfig{}, fmt.Errorf("no mapping matches %q", arg)
	}

	return m, nil
}

// buildEngine constructs a syncengine.Engine from the loaded config and
// rootContext, wiring the observer and conflict strategy shared by every
// command that drives a sync run.
func buildEngine(rc *rootContext, observer syncengine.Observer) *syncengine.Engine {
	strategy := syncengine.ParseConflictStrategy(rc.cfg.ConflictStrategy)

	return syncengine.NewEngine(rc.cfg.Machine, rc.cfg.SSDMount, rc.logger,
		syncengine.WithConflictStrategy(strategy),
		syncengine.WithObserver(observer),
	)
}

// buildMatcher compiles the configured ignore patterns. Config validation
// already rejected malformed patterns at load time, so this only fails if
// the config was mutated in-process without re-validating.
func buildMatcher(cfg *config.Config) (*pathutil.Matcher, error) {
	return pathutil.NewMatcher(cfg.Ignore)
}
