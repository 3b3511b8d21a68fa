// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for ssd-syncer.
package config

import "github.com/ssd-syncer/ssd-syncer/internal/syncengine"

// Config is the top-level configuration structure, decoded in a single
// pass since mappings are a native TOML array-of-tables and need no
// second-pass section extraction.
type Config struct {
	Machine          string          `toml:"machine"`
	SSDMount         string          `toml:"ssd_mount"`
	ConflictStrategy string          `toml:"conflict_strategy"`
	Ignore           []string        `toml:"ignore"`
	Mappings         []MappingConfig `toml:"mapping"`
}

// MappingConfig is one `[[mapping]]` table in the config file.
type MappingConfig struct {
	Name            string `toml:"name"`
	LocalRoot       string `toml:"local_root"`
	SSDRelativeRoot string `toml:"ssd_relative_root"`
}

// ToEngineMapping converts a MappingConfig into the engine's Mapping type.
func (m MappingConfig) ToEngineMapping() syncengine.Mapping {
	return syncengine.Mapping{
		Name:            m.Name,
		LocalRoot:       m.LocalRoot,
		SSDRelativeRoot: m.SSDRelativeRoot,
	}
}

// FindMapping returns the mapping named name, or false if none matches.
func (c *Config) FindMapping(name string) (MappingConfig, bool) {
	for _, m := range c.Mappings {
		if m.Name == name {
			return m, true
		}
	}

	return MappingConfig{}, false
}

// MappingBySSDMountOrName resolves the command surface's "mapping-name-or-
// mount" argument: an exact mapping name match wins; otherwise, if arg
// matches the configured SSD mount path, and exactly one mapping exists,
// that mapping is returned.
func (c *Config) MappingBySSDMountOrName(arg string) (MappingConfig, bool) {
	if m, ok := c.FindMapping(arg); ok {
		return m, true
	}

	if arg == c.SSDMount && len(c.Mappings) == 1 {
		return c.Mappings[0], true
	}

	return MappingConfig{}, false
}
