package config

import "fmt"

// AddMapping appends a new mapping to cfg, rejecting duplicate names.
func (c *Config) AddMapping(m MappingConfig) error {
	if _, ok := c.FindMapping(m.Name); ok {
		return &ConfigError{Field: "mapping." + m.Name, Err: fmt.Errorf("%w: %q", ErrDuplicateMapping, m.Name)}
	}

	c.Mappings = append(c.Mappings, m)

	return nil
}

// RemoveMapping deletes the mapping named name. Returns false if no such
// mapping exists.
func (c *Config) RemoveMapping(name string) bool {
	for i, m := range c.Mappings {
		if m.Name == name {
			c.Mappings = append(c.Mappings[:i], c.Mappings[i+1:]...)
			return true
		}
	}

	return false
}

// ResetIgnore replaces the ignore pattern list wholesale.
func (c *Config) ResetIgnore(patterns []string) {
	c.Ignore = append([]string(nil), patterns...)
}

// AddIgnore appends a pattern to the ignore list, skipping it if already
// present.
func (c *Config) AddIgnore(pattern string) {
	for _, p := range c.Ignore {
		if p == pattern {
			return
		}
	}

	c.Ignore = append(c.Ignore, pattern)
}

// RemoveIgnore deletes a pattern from the ignore list. Returns false if the
// pattern wasn't present.
func (c *Config) RemoveIgnore(pattern string) bool {
	for i, p := range c.Ignore {
		if p == pattern {
			c.Ignore = append(c.Ignore[:i], c.Ignore[i+1:]...)
			return true
		}
	}

	return false
}
