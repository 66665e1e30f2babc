package signal

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during URL canonicalization.
// Aggregators re-share the same link with different tracking junk attached.
var trackingParams = map[string]bool{
	"ref":    true,
	"fbclid": true,
	"gclid":  true,
}

// CanonicalURL normalizes a URL for duplicate detection: lowercased
// scheme and host, tracking parameters and fragment removed, trailing
// slash trimmed. Unparseable input is returned unchanged.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	query := u.Query()
	for key := range query {
		if trackingParams[key] || strings.HasPrefix(key, "utm_") {
			query.Del(key)
		}
	}
	u.RawQuery = query.Encode()

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

// tokenize lowercases a title and splits it into a token set, dropping
// punctuation-only and single-character fragments.
func tokenize(title string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(field) > 1 {
			tokens[field] = true
		}
	}
	return tokens
}

// jaccard computes set similarity between two token sets.
// Two empty sets count as identical.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// unionFind is a plain disjoint-set structure with path compression,
// used to close duplicate pairs transitively: if A matches B and B
// matches C, all three land in one cluster even when A and C do not
// match directly.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[rb] = ra
	}
}

// Cluster assigns a cluster id to each signal. Two signals are duplicates
// when their canonical URLs match or their title token sets reach the
// similarity threshold; clusters are the transitive closure of that
// relation. Cluster ids are the index of each cluster's first member,
// so the assignment is deterministic for a given input order.
func Cluster(signals []RankedSignal, similarity float64) {
	n := len(signals)
	uf := newUnionFind(n)

	urls := make([]string, n)
	tokens := make([]map[string]bool, n)
	for i, sig := range signals {
		urls[i] = CanonicalURL(sig.URL)
		tokens[i] = tokenize(sig.Title)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if urls[i] != "" && urls[i] == urls[j] {
				uf.union(i, j)
				continue
			}
			if jaccard(tokens[i], tokens[j]) >= similarity {
				uf.union(i, j)
			}
		}
	}

	// Label each cluster by its smallest member index.
	label := make(map[int]int)
	for i := range signals {
		root := uf.find(i)
		if _, seen := label[root]; !seen {
			label[root] = i
		}
		signals[i].Cluster = label[root]
	}
}
