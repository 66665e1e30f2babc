package signal

import (
	"sort"
	"time"

	"github.com/agentdev/toolwatch/internal/source"
)

// Ranker runs the full signal pipeline: window filter, scoring,
// duplicate clustering, and top-N selection.
type Ranker struct {
	scorer     *Scorer
	similarity float64
	top        int
	window     time.Duration
	now        time.Time
}

// NewRanker builds a Ranker for one run. top bounds the result size;
// similarity is the Jaccard threshold for duplicate titles.
func NewRanker(weights Weights, keywords []string, window time.Duration, similarity float64, top int, now time.Time) *Ranker {
	return &Ranker{
		scorer:     NewScorer(weights, keywords, window, now),
		similarity: similarity,
		top:        top,
		window:     window,
		now:        now,
	}
}

// Rank filters records to the lookback window, scores them, collapses
// duplicate clusters to their highest-scoring member, and returns the
// top-N survivors ordered by descending score. Ties break toward the
// newer publication, then lexicographic title, so repeated runs over
// the same input produce the same report.
func (r *Ranker) Rank(records []source.Record) []RankedSignal {
	cutoff := r.now.Add(-r.window)

	inWindow := make([]source.Record, 0, len(records))
	for _, rec := range records {
		if rec.PublishedAt.IsZero() || rec.PublishedAt.Before(cutoff) {
			continue
		}
		inWindow = append(inWindow, rec)
	}

	// Stable input order for deterministic cluster labels regardless of
	// the order connectors finished in.
	sort.Slice(inWindow, func(i, j int) bool {
		if inWindow[i].URL != inWindow[j].URL {
			return inWindow[i].URL < inWindow[j].URL
		}
		return inWindow[i].Title < inWindow[j].Title
	})

	scored := r.scorer.Score(inWindow)
	Cluster(scored, r.similarity)

	// Keep the best-scoring member of each cluster.
	best := make(map[int]RankedSignal)
	sizes := make(map[int]int)
	for _, sig := range scored {
		sizes[sig.Cluster]++
		cur, seen := best[sig.Cluster]
		if !seen || betterSurvivor(sig, cur) {
			best[sig.Cluster] = sig
		}
	}

	survivors := make([]RankedSignal, 0, len(best))
	for cluster, sig := range best {
		sig.Duplicates = sizes[cluster] - 1
		survivors = append(survivors, sig)
	}

	sort.Slice(survivors, func(i, j int) bool {
		return betterSurvivor(survivors[i], survivors[j])
	})

	if r.top > 0 && len(survivors) > r.top {
		survivors = survivors[:r.top]
	}
	return survivors
}

// betterSurvivor orders signals by descending score, then newer
// publication, then lexicographic title.
func betterSurvivor(a, b RankedSignal) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	return a.Title < b.Title
}
