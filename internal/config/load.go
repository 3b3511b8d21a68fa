package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and decodes a TOML config file in a single pass, validates
// it, and returns the resulting Config. A missing file is returned as an
// error wrapping fs.ErrNotExist (detectable with errors.Is); callers that
// want to bootstrap a first config fall back to DefaultConfig.
func Load(path string, logger *slog.Logger) (*Config, error) {
	logger = orDiscard(logger)
	logger.Debug("loading config file", "path", path)

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &ConfigError{Field: undecoded[0].String(), Err: ErrUnknownKey}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	logger.Debug("config file parsed", "path", path, "mapping_count", len(cfg.Mappings))

	return cfg, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return logger
}
