package mdb

import (
	"fmt"
	"regexp"
	"strings"
)

// SearchOptions control how a pattern is compiled and applied.
// Glob and Regex are mutually exclusive; with neither set the pattern is a
// plain substring test.
type SearchOptions struct {
	IgnoreCase bool
	Glob       bool // `*` matches any run (separators included), `?` one rune
	Regex      bool // pattern is a regular expression, matched anywhere
	Basename   bool // match against the final path component only
	Limit      int  // maximum results; 0 means unbounded
}

// Search compiles pattern according to opts and scans the index in stored
// order, collecting matches until the limit is reached or the index is
// exhausted. Results keep the index's order; no sorting is guaranteed.
// A pattern that does not compile fails with ErrInvalidPattern before any
// matching begins.
func Search(idx *PathIndex, pattern string, opts SearchOptions) ([]PathRecord, error) {
	match, err := compileMatcher(pattern, opts)
	if err != nil {
		return nil, err
	}

	var results []PathRecord
	for _, rec := range idx.All() {
		target := rec.Path
		if opts.Basename {
			target = rec.Basename()
		}
		if !match(target) {
			continue
		}
		results = append(results, rec)
		if opts.Limit > 0 && len(results) >= opts.Limit {
			break
		}
	}
	return results, nil
}

// compileMatcher turns a raw pattern into a predicate over candidate strings.
func compileMatcher(pattern string, opts SearchOptions) (func(string) bool, error) {
	switch {
	case opts.Regex:
		return compileRegexp(pattern, opts.IgnoreCase)
	case opts.Glob:
		return compileRegexp(globToRegexp(pattern), opts.IgnoreCase)
	default:
		if opts.IgnoreCase {
			want := strings.ToLower(pattern)
			return func(s string) bool {
				return strings.Contains(strings.ToLower(s), want)
			}, nil
		}
		return func(s string) bool {
			return strings.Contains(s, pattern)
		}, nil
	}
}

// compileRegexp compiles expr as a search (not full-match) expression.
// Case folding is a compile option so non-ASCII text is not corrupted by
// manual lower-casing.
func compileRegexp(expr string, ignoreCase bool) (func(string) bool, error) {
	if ignoreCase {
		expr = "(?i)" + expr
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return rx.MatchString, nil
}

// globToRegexp translates a glob pattern into an equivalent anchored regular
// expression: `*` becomes `.*` (crossing path separators), `?` becomes a
// single-rune match, everything else is taken literally.
func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}
