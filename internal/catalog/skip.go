package catalog

import (
	"path/filepath"
	"strings"
)

// skipRule is a parsed exclusion rule with its matching strategy.
type skipRule struct {
	rule     string
	isPrefix bool // true = absolute path prefix; false = basename glob pattern
}

// SkipMatcher checks scan paths against the configured exclusion rules.
// Rules starting with '/' exclude that path and everything under it; all
// other rules are glob patterns matched against the basename only.
type SkipMatcher struct {
	rules []skipRule
}

// NewSkipMatcher creates a SkipMatcher from raw rule strings.
// Blank rules and rules starting with '#' are dropped.
func NewSkipMatcher(raw []string) *SkipMatcher {
	var rules []skipRule
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" || strings.HasPrefix(r, "#") {
			continue
		}
		rules = append(rules, skipRule{
			rule:     r,
			isPrefix: strings.HasPrefix(r, "/"),
		})
	}
	return &SkipMatcher{rules: rules}
}

// Match reports whether the given absolute path should be excluded from the
// scan.
func (m *SkipMatcher) Match(path string) bool {
	if len(m.rules) == 0 {
		return false
	}

	basename := filepath.Base(path)

	for _, r := range m.rules {
		if r.isPrefix {
			if path == r.rule || strings.HasPrefix(path, r.rule+"/") {
				return true
			}
			continue
		}
		matched, err := filepath.Match(r.rule, basename)
		if err != nil {
			// Unparseable pattern matches nothing.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
