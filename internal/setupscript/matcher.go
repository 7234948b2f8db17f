package setupscript

import (
	"fmt"
	"regexp"
)

// Matcher tests base file names against a regular expression anchored at the
// start of the name only. "up.sql" therefore matches "up.sql.disabled" but not
// "001_up.sql".
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles pattern for prefix matching.
func NewMatcher(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}
	return &Matcher{re: re}, nil
}

// Match reports whether name starts with a match of the pattern.
func (m *Matcher) Match(name string) bool {
	// leftmost-first: a match at offset 0 is returned whenever one exists
	loc := m.re.FindStringIndex(name)
	return loc != nil && loc[0] == 0
}
