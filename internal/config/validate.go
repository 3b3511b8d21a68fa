package config

import (
	"errors"
	"fmt"

	"github.com/ssd-syncer/ssd-syncer/internal/pathutil"
)

var validConflictStrategies = map[string]bool{
	"":           true, // empty means "use default"
	"both":       true,
	"local-wins": true,
	"ssd-wins":   true,
	"newer-wins": true,
	"ask":        true,
}

// ErrInvalidMachineName is wrapped by ConfigError when the machine field is
// empty or contains a path separator.
var ErrInvalidMachineName = errors.New("machine name must be non-empty and contain no path separators")

// ErrDuplicateMapping is wrapped by ConfigError when two mappings share a
// name.
var ErrDuplicateMapping = errors.New("duplicate mapping name")

// ErrUnknownConflictStrategy is wrapped by ConfigError when conflict_strategy
// names something other than both/local-wins/ssd-wins/newer-wins/ask.
var ErrUnknownConflictStrategy = errors.New("unknown conflict strategy")

// Validate checks all configuration values and returns all errors found,
// joined via errors.Join, so a user sees every problem in one pass rather
// than fixing them one at a time.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Machine == "" || containsPathSeparator(cfg.Machine) {
		errs = append(errs, &ConfigError{Field: "machine", Err: ErrInvalidMachineName})
	}

	if !validConflictStrategies[cfg.ConflictStrategy] {
		errs = append(errs, &ConfigError{Field: "conflict_strategy",
			Err: fmt.Errorf("%w: %q", ErrUnknownConflictStrategy, cfg.ConflictStrategy)})
	}

	for _, pattern := range cfg.Ignore {
		if err := pathutil.ValidatePattern(pattern); err != nil {
			errs = append(errs, &ConfigError{Field: "ignore", Err: err})
		}
	}

	errs = append(errs, validateMappings(cfg.Mappings)...)

	return errors.Join(errs...)
}

func validateMappings(mappings []MappingConfig) []error {
	var errs []error

	seen := make(map[string]bool, len(mappings))

	for _, m := range mappings {
		if m.Name == "" {
			errs = append(errs, &ConfigError{Field: "mapping.name", Err: errors.New("must not be empty")})
			continue
		}

		if seen[m.Name] {
			errs = append(errs, &ConfigError{Field: "mapping." + m.Name,
				Err: fmt.Errorf("%w: %q", ErrDuplicateMapping, m.Name)})
		}

		seen[m.Name] = true

		if m.LocalRoot == "" {
			errs = append(errs, &ConfigError{Field: "mapping." + m.Name + ".local_root", Err: errors.New("must not be empty")})
		}

		if m.SSDRelativeRoot == "" {
			errs = append(errs, &ConfigError{Field: "mapping." + m.Name + ".ssd_relative_root", Err: errors.New("must not be empty")})
		}
	}

	return errs
}

func containsPathSeparator(s string) bool {
	for _, r := range s {
		if r == '/' || r == '\\' {
			return true
		}
	}

	return false
}
