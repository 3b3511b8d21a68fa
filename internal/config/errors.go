package config

import "errors"

// ErrUnknownKey is wrapped by ConfigError when the TOML document contains a
// key that does not map to any known field.
var ErrUnknownKey = errors.New("unknown configuration key")

// ConfigError reports an invalid configuration value: a bad machine name, a
// malformed ignore pattern, a duplicate mapping name, or an unknown key.
// Configuration errors are surfaced immediately at load time, before any
// engine I/O happens.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config: " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }
