package signal

import (
	"testing"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips utm parameters",
			raw:  "https://example.com/post?utm_source=reddit&utm_medium=social",
			want: "https://example.com/post",
		},
		{
			name: "strips ref and fbclid",
			raw:  "https://example.com/post?ref=hn&fbclid=abc123",
			want: "https://example.com/post",
		},
		{
			name: "keeps meaningful query",
			raw:  "https://example.com/search?q=agents&utm_campaign=x",
			want: "https://example.com/search?q=agents",
		},
		{
			name: "strips fragment",
			raw:  "https://example.com/post#comments",
			want: "https://example.com/post",
		},
		{
			name: "trims trailing slash",
			raw:  "https://example.com/post/",
			want: "https://example.com/post",
		},
		{
			name: "lowercases host",
			raw:  "https://Example.COM/Post",
			want: "https://example.com/Post",
		},
		{
			name: "unparseable returned unchanged",
			raw:  "not a url",
			want: "not a url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.raw); got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	a := tokenize("New AI agent framework released")
	b := tokenize("New AI agent framework released today")
	if sim := jaccard(a, b); sim < 0.8 {
		t.Errorf("near-identical titles scored %f", sim)
	}

	c := tokenize("Kernel scheduler regression in 6.18")
	if sim := jaccard(a, c); sim > 0.1 {
		t.Errorf("unrelated titles scored %f", sim)
	}

	if sim := jaccard(tokenize(""), tokenize("")); sim != 1 {
		t.Errorf("empty titles scored %f, want 1", sim)
	}
}

func TestClusterByURL(t *testing.T) {
	signals := []RankedSignal{
		sig("Show HN: toolwatch", "https://example.com/post?utm_source=hn"),
		sig("Completely different title", "https://example.com/post/"),
		sig("Unrelated elsewhere", "https://other.example.org/x"),
	}

	Cluster(signals, 0.6)

	if signals[0].Cluster != signals[1].Cluster {
		t.Error("same canonical URL must share a cluster")
	}
	if signals[0].Cluster == signals[2].Cluster {
		t.Error("distinct URL and title must not share a cluster")
	}
}

// A matches B and B matches C on titles, but A and C alone would not
// match. All three must collapse into one cluster.
func TestClusterTransitiveClosure(t *testing.T) {
	signals := []RankedSignal{
		sig("alpha beta gamma delta", "https://a.example.com/1"),
		sig("beta gamma delta epsilon", "https://b.example.com/2"),
		sig("gamma delta epsilon zeta", "https://c.example.com/3"),
	}

	if sim := jaccard(tokenize(signals[0].Title), tokenize(signals[2].Title)); sim >= 0.6 {
		t.Fatalf("test premise broken: A and C match directly (%f)", sim)
	}

	Cluster(signals, 0.6)

	if signals[0].Cluster != signals[1].Cluster || signals[1].Cluster != signals[2].Cluster {
		t.Errorf("expected one transitive cluster, got %d/%d/%d",
			signals[0].Cluster, signals[1].Cluster, signals[2].Cluster)
	}
}

func TestClusterIDsDeterministic(t *testing.T) {
	build := func() []RankedSignal {
		return []RankedSignal{
			sig("first topic", "https://example.com/1"),
			sig("second topic entirely", "https://example.com/2"),
			sig("first topic", "https://example.com/1"),
		}
	}

	a := build()
	b := build()
	Cluster(a, 0.6)
	Cluster(b, 0.6)

	for i := range a {
		if a[i].Cluster != b[i].Cluster {
			t.Errorf("cluster assignment not deterministic at %d: %d vs %d", i, a[i].Cluster, b[i].Cluster)
		}
	}
}
