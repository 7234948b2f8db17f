package setupscript

import (
	"errors"
	"testing"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		file    string
		want    bool
	}{
		{name: "exact name", pattern: "up.sql", file: "up.sql", want: true},
		{name: "prefix with suffix", pattern: "up.sql", file: "up.sql.disabled", want: true},
		{name: "backup suffix", pattern: "up.sql", file: "up.sql.bak", want: true},
		{name: "not at start", pattern: "up.sql", file: "001_up.sql", want: false},
		{name: "down file", pattern: "up.sql", file: "down.sql", want: false},
		{name: "dot is a wildcard", pattern: "up.sql", file: "up_sql", want: true},
		{name: "escaped dot", pattern: `up\.sql`, file: "up_sql", want: false},
		{name: "alternation stays anchored", pattern: "up|init", file: "x_init.sql", want: false},
		{name: "alternation second branch", pattern: "up|init", file: "init.sql", want: true},
		{name: "explicit end anchor", pattern: `up\.sql$`, file: "up.sql.bak", want: false},
		{name: "numbered migrations", pattern: `\d+_.*\.up\.sql`, file: "0001_users.up.sql", want: true},
		{name: "quoted literal", pattern: `\Qup.sql`, file: "up.sql", want: true},
		{name: "quoted literal with suffix", pattern: `\Qup.sql`, file: "up.sql.bak", want: true},
		{name: "quoted literal dot is literal", pattern: `\Qup.sql`, file: "up_sql", want: false},
		{name: "match later in name only", pattern: "sql", file: "up.sql", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.pattern)
			if err != nil {
				t.Fatalf("NewMatcher(%q) error = %v", tt.pattern, err)
			}
			if got := m.Match(tt.file); got != tt.want {
				t.Errorf("Match(%q) with %q = %v, want %v", tt.file, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestNewMatcher_Invalid(t *testing.T) {
	for _, pattern := range []string{"up(", "a)|(b", "[z-a]"} {
		_, err := NewMatcher(pattern)
		if !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("NewMatcher(%q) error = %v, want ErrInvalidPattern", pattern, err)
		}
	}
}
