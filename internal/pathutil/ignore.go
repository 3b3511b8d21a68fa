package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMalformedPattern indicates an ignore pattern that is empty, contains a
// backslash, or contains a ".." component.
type ErrMalformedPattern struct {
	Pattern string
	Reason  string
}

func (e *ErrMalformedPattern) Error() string {
	return fmt.Sprintf("pathutil: malformed ignore pattern %q: %s", e.Pattern, e.Reason)
}

// ValidatePattern rejects patterns that are empty, contain a backslash, or
// contain a ".." component. Called at config load time so bad patterns fail
// fast rather than silently matching nothing.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return &ErrMalformedPattern{Pattern: pattern, Reason: "empty pattern"}
	}

	if strings.Contains(pattern, `\`) {
		return &ErrMalformedPattern{Pattern: pattern, Reason: "contains a backslash"}
	}

	for _, seg := range strings.Split(pattern, "/") {
		if seg == ".." {
			return &ErrMalformedPattern{Pattern: pattern, Reason: `contains a ".." component`}
		}
	}

	return nil
}

// Matcher evaluates a flat list of ignore patterns against RelPaths.
// Each pattern is either a name pattern (no "/": matches any segment of the
// candidate) or a path pattern (contains "/": matches the candidate itself
// or a prefix of it on a segment boundary). Both kinds support "*"/"?" glob
// rules bounded to a single segment — there is no "**".
type Matcher struct {
	namePatterns []string
	pathPatterns []string
}

// NewMatcher validates and compiles the given patterns into a Matcher.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range patterns {
		if err := ValidatePattern(p); err != nil {
			return nil, err
		}

		if strings.Contains(p, "/") {
			m.pathPatterns = append(m.pathPatterns, p)
		} else {
			m.namePatterns = append(m.namePatterns, p)
		}
	}

	return m, nil
}

// Match reports whether the given normalized RelPath is ignored under any
// configured pattern.
func (m *Matcher) Match(relPath string) bool {
	if m == nil {
		return false
	}

	segments := Segments(relPath)

	for _, pattern := range m.namePatterns {
		for _, seg := range segments {
			if matched, _ := filepath.Match(pattern, seg); matched {
				return true
			}
		}
	}

	for _, pattern := range m.pathPatterns {
		if matchesPathPattern(pattern, segments) {
			return true
		}
	}

	return false
}

// matchesPathPattern reports whether candidateSegments equals, or has as a
// prefix terminating on a segment boundary, the glob pattern split the same
// way. Each segment of the pattern is matched independently with
// filepath.Match so globs cannot span a "/" boundary.
func matchesPathPattern(pattern string, candidateSegments []string) bool {
	patternSegments := strings.Split(pattern, "/")
	if len(patternSegments) > len(candidateSegments) {
		return false
	}

	for i, ps := range patternSegments {
		matched, err := filepath.Match(ps, candidateSegments[i])
		if err != nil || !matched {
			return false
		}
	}

	return true
}
