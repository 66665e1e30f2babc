package track

import "testing"

func TestIsNewerSemanticOrdering(t *testing.T) {
	tests := []struct {
		fetched string
		current string
		want    bool
	}{
		{"1.9.3", "1.9.0", true},
		{"1.9.0", "1.9.3", false},
		{"1.9.0", "1.9.0", false},
		{"2.0.0", "1.99.99", true},
		{"1.10.0", "1.9.0", true}, // numeric, not lexicographic
		{"1.0.0", "1.0.0-rc.1", true},
		{"1.0.0-rc.1", "1.0.0", false},
		{"0.4.2", "0.4.2", false},
	}

	for _, tt := range tests {
		if got := IsNewer(tt.fetched, tt.current); got != tt.want {
			t.Errorf("IsNewer(%q, %q): expected %v, got %v", tt.fetched, tt.current, tt.want, got)
		}
	}
}

func TestIsNewerLexicographicFallback(t *testing.T) {
	// Unparseable versions fall back to inequality
	if !IsNewer("2026.08.1-nightly.x", "2026.07.2-nightly.x") {
		t.Error("expected inequality of unparseable versions to count as a change")
	}
	if IsNewer("build-abc", "build-abc") {
		t.Error("expected equal unparseable versions to not count as a change")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.0.0", 1},
		{"1.2.3", "1.2.3", 0},
		{"1.10.0", "1.9.0", 1},
		{"abc", "abd", -1},
		{"same-string", "same-string", 0},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}
