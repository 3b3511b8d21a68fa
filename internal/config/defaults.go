package config

// Default values for configuration options, used both as the starting
// point for TOML decoding (so unset fields retain sane defaults) and as
// the fallback when no config file exists yet.
const (
	defaultConflictStrategy = "both"
)

// DefaultConfig returns a Config populated with default values and no
// mappings.
func DefaultConfig() *Config {
	return &Config{
		ConflictStrategy: defaultConflictStrategy,
		Ignore:           []string{},
		Mappings:         []MappingConfig{},
	}
}
