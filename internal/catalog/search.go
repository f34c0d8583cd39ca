package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern means a catalog search pattern failed to compile.
var ErrInvalidPattern = errors.New("invalid search pattern")

// SearchOptions control catalog queries. Without Regex, patterns containing
// glob metacharacters are matched as globs and everything else as a
// substring, which is the query model updatedb-style tools expose.
type SearchOptions struct {
	IgnoreCase bool
	Regex      bool
	Basename   bool // match the name column instead of the full path
	Limit      int  // maximum results; 0 means unbounded
}

// Search returns the paths of cataloged entries matching pattern, in
// insertion order. Substring queries are pushed down to SQL; glob and regex
// patterns are evaluated over the streamed rows.
func (s *Store) Search(pattern string, opts SearchOptions) ([]string, error) {
	switch {
	case opts.Regex:
		return s.scanSearch(pattern, opts)
	case strings.ContainsAny(pattern, "*?["):
		return s.scanSearch(globExpr(pattern), opts)
	default:
		return s.substringSearch(pattern, opts.IgnoreCase, opts.Basename, opts.Limit)
	}
}

// scanSearch compiles expr and tests it against every row until the limit is
// reached.
func (s *Store) scanSearch(expr string, opts SearchOptions) ([]string, error) {
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	var results []string
	err = s.eachRow(func(p, name string) bool {
		target := p
		if opts.Basename {
			target = name
		}
		if rx.MatchString(target) {
			results = append(results, p)
			if opts.Limit > 0 && len(results) >= opts.Limit {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// globExpr translates a glob into an anchored regular expression. Character
// classes pass through; `*` crosses path separators.
func globExpr(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[', ']':
			b.WriteRune(r)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}
