package mdb

import (
	"errors"
	"reflect"
	"testing"
)

// searchIndex builds an index straight from records, bypassing the decoder.
func searchIndex(records ...PathRecord) *PathIndex {
	return &PathIndex{records: records}
}

func paths(records []PathRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Path)
	}
	return out
}

func TestSearch_Substring(t *testing.T) {
	t.Parallel()

	idx := searchIndex(
		PathRecord{Path: "/etc", Kind: KindDirectory},
		PathRecord{Path: "/etc/README", Kind: KindFile},
		PathRecord{Path: "/home/user/readme.txt", Kind: KindFile},
		PathRecord{Path: "/var/log/syslog", Kind: KindFile},
	)

	t.Run("case-sensitive matches only exact casing", func(t *testing.T) {
		t.Parallel()
		got, err := Search(idx, "readme", SearchOptions{})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		want := []string{"/home/user/readme.txt"}
		if !reflect.DeepEqual(paths(got), want) {
			t.Errorf("Search() = %v, want %v", paths(got), want)
		}
	})

	t.Run("case-insensitive matches both casings", func(t *testing.T) {
		t.Parallel()
		got, err := Search(idx, "readme", SearchOptions{IgnoreCase: true})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		want := []string{"/etc/README", "/home/user/readme.txt"}
		if !reflect.DeepEqual(paths(got), want) {
			t.Errorf("Search() = %v, want %v", paths(got), want)
		}
	})

	t.Run("no matches is not an error", func(t *testing.T) {
		t.Parallel()
		got, err := Search(idx, "does-not-exist", SearchOptions{})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Search() = %v, want no results", paths(got))
		}
	})
}

func TestSearch_GlobMatchesEquivalentRegex(t *testing.T) {
	t.Parallel()

	idx := searchIndex(
		PathRecord{Path: "/etc/nginx/nginx.conf", Kind: KindFile},
		PathRecord{Path: "/etc/resolv.conf", Kind: KindFile},
		PathRecord{Path: "/etc/resolv.conf.bak", Kind: KindFile},
		PathRecord{Path: "/usr/share/doc/conf", Kind: KindDirectory},
		PathRecord{Path: "/home/user/app.config", Kind: KindFile},
	)

	glob, err := Search(idx, "*.conf", SearchOptions{Glob: true})
	if err != nil {
		t.Fatalf("glob Search() error = %v", err)
	}

	rx, err := Search(idx, `.*\.conf$`, SearchOptions{Regex: true})
	if err != nil {
		t.Fatalf("regex Search() error = %v", err)
	}

	if !reflect.DeepEqual(paths(glob), paths(rx)) {
		t.Errorf("glob results %v differ from regex results %v", paths(glob), paths(rx))
	}

	want := []string{"/etc/nginx/nginx.conf", "/etc/resolv.conf"}
	if !reflect.DeepEqual(paths(glob), want) {
		t.Errorf("glob Search() = %v, want %v", paths(glob), want)
	}
}

func TestSearch_GlobCrossesSeparators(t *testing.T) {
	t.Parallel()

	idx := searchIndex(
		PathRecord{Path: "/etc/nginx/sites/default", Kind: KindFile},
		PathRecord{Path: "/etc/hosts", Kind: KindFile},
	)

	got, err := Search(idx, "/etc/*/default", SearchOptions{Glob: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"/etc/nginx/sites/default"}
	if !reflect.DeepEqual(paths(got), want) {
		t.Errorf("Search() = %v, want %v", paths(got), want)
	}
}

func TestSearch_GlobQuestionMark(t *testing.T) {
	t.Parallel()

	idx := searchIndex(
		PathRecord{Path: "/tmp/a1", Kind: KindFile},
		PathRecord{Path: "/tmp/a22", Kind: KindFile},
	)

	got, err := Search(idx, "/tmp/a?", SearchOptions{Glob: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"/tmp/a1"}
	if !reflect.DeepEqual(paths(got), want) {
		t.Errorf("Search() = %v, want %v", paths(got), want)
	}
}

func TestSearch_Basename(t *testing.T) {
	t.Parallel()

	idx := searchIndex(
		PathRecord{Path: "/etc/passwd", Kind: KindFile},
		PathRecord{Path: "/home/passwd-archive/notes.txt", Kind: KindFile},
	)

	got, err := Search(idx, "passwd", SearchOptions{Basename: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// Only the final component is matched, so a file whose parent directory
	// mentions passwd does not count.
	want := []string{"/etc/passwd"}
	if !reflect.DeepEqual(paths(got), want) {
		t.Errorf("Search() = %v, want %v", paths(got), want)
	}
}

func TestSearch_LimitKeepsStoredOrder(t *testing.T) {
	t.Parallel()

	idx := searchIndex(
		PathRecord{Path: "/a/hit1", Kind: KindFile},
		PathRecord{Path: "/a/hit2", Kind: KindFile},
		PathRecord{Path: "/a/hit3", Kind: KindFile},
		PathRecord{Path: "/a/hit4", Kind: KindFile},
		PathRecord{Path: "/a/hit5", Kind: KindFile},
	)

	got, err := Search(idx, "hit", SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"/a/hit1", "/a/hit2"}
	if !reflect.DeepEqual(paths(got), want) {
		t.Errorf("Search() = %v, want %v", paths(got), want)
	}
}

func TestSearch_LimitDoesNotAffectStats(t *testing.T) {
	t.Parallel()

	// Decode runs to completion before any search, so a limited search must
	// not change the totals the stats report.
	db, err := Decode(sampleImage())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	before := db.Stats()

	if _, err := Search(db.Index, "e", SearchOptions{Limit: 1}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	after := db.Stats()
	if before != after {
		t.Errorf("stats changed across a limited search: %+v vs %+v", before, after)
	}
	if after.Total != len(samplePreorder) {
		t.Errorf("Total = %d, want %d", after.Total, len(samplePreorder))
	}
}

func TestSearch_InvalidRegex(t *testing.T) {
	t.Parallel()

	idx := searchIndex(PathRecord{Path: "/etc/hosts", Kind: KindFile})

	got, err := Search(idx, "[unclosed", SearchOptions{Regex: true})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("Search() error = %v, want ErrInvalidPattern", err)
	}
	// The pattern fails before matching begins: no partial results.
	if got != nil {
		t.Errorf("Search() results = %v, want nil", paths(got))
	}
}

func TestSearch_RegexCaseFoldIsCompileOption(t *testing.T) {
	t.Parallel()

	idx := searchIndex(
		PathRecord{Path: "/docs/СПРАВКА.txt", Kind: KindFile},
		PathRecord{Path: "/docs/справка.txt", Kind: KindFile},
	)

	got, err := Search(idx, "справка", SearchOptions{Regex: true, IgnoreCase: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Search() matched %d records, want 2 (non-ASCII case fold)", len(got))
	}
}

func TestGlobToRegexp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		glob string
		want string
	}{
		{"*.conf", `^.*\.conf$`},
		{"a?c", `^a.c$`},
		{"plain", `^plain$`},
		{"weird(+)", `^weird\(\+\)$`},
	}
	for _, tt := range tests {
		if got := globToRegexp(tt.glob); got != tt.want {
			t.Errorf("globToRegexp(%q) = %q, want %q", tt.glob, got, tt.want)
		}
	}
}
