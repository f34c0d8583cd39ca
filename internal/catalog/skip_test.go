package catalog

import "testing"

func TestSkipMatcher(t *testing.T) {
	t.Parallel()

	m := NewSkipMatcher([]string{"/proc", "/var/run", "*.swp", "", "# comment"})

	tests := []struct {
		path string
		want bool
	}{
		{"/proc", true},
		{"/proc/1/status", true},
		{"/process-notes.txt", false}, // prefix is a path component, not a string prefix
		{"/var/run", true},
		{"/var/runlevel", false},
		{"/home/user/.file.swp", true},
		{"/home/user/file.txt", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSkipMatcher_Empty(t *testing.T) {
	t.Parallel()

	m := NewSkipMatcher(nil)
	if m.Match("/anything") {
		t.Error("empty matcher excluded a path")
	}
}
