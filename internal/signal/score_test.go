package signal

import (
	"testing"
	"time"

	"github.com/agentdev/toolwatch/internal/source"
)

var scoreNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

const week = 7 * 24 * time.Hour

func sig(title, url string) RankedSignal {
	return RankedSignal{Record: source.Record{Title: title, URL: url}}
}

func rec(title string, engagement int, age time.Duration) source.Record {
	return source.Record{
		Source:      "test",
		Title:       title,
		URL:         "https://example.com/" + title,
		Engagement:  engagement,
		PublishedAt: scoreNow.Add(-age),
	}
}

func TestScoreHigherEngagementWins(t *testing.T) {
	scorer := NewScorer(DefaultWeights, nil, week, scoreNow)

	ranked := scorer.Score([]source.Record{
		rec("popular", 500, time.Hour),
		rec("quiet", 2, time.Hour),
	})

	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("expected higher engagement to score higher: %f vs %f",
			ranked[0].Score, ranked[1].Score)
	}
}

func TestScoreNewerWins(t *testing.T) {
	scorer := NewScorer(DefaultWeights, nil, week, scoreNow)

	ranked := scorer.Score([]source.Record{
		rec("fresh", 50, time.Hour),
		rec("stale", 50, 6*24*time.Hour),
	})

	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("expected newer signal to score higher: %f vs %f",
			ranked[0].Score, ranked[1].Score)
	}
}

func TestScoreKeywordRelevance(t *testing.T) {
	scorer := NewScorer(DefaultWeights, []string{"agent", "llm"}, week, scoreNow)

	ranked := scorer.Score([]source.Record{
		rec("New LLM agent framework", 10, time.Hour),
		rec("Gardening tips for August", 10, time.Hour),
	})

	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("expected keyword match to score higher: %f vs %f",
			ranked[0].Score, ranked[1].Score)
	}
	if len(ranked[0].Keywords) != 2 {
		t.Errorf("expected both keywords recorded, got %v", ranked[0].Keywords)
	}
	if len(ranked[1].Keywords) != 0 {
		t.Errorf("expected no keywords for unrelated title, got %v", ranked[1].Keywords)
	}
}

func TestScoreBounds(t *testing.T) {
	scorer := NewScorer(DefaultWeights, []string{"agent"}, week, scoreNow)

	ranked := scorer.Score([]source.Record{
		rec("agent agent agent", 100000, time.Minute),
		rec("nothing", 0, 10*24*time.Hour),
		{Source: "test", Title: "no timestamp"},
	})

	for _, sig := range ranked {
		if sig.Score < 0 || sig.Score > 1 {
			t.Errorf("score out of bounds for %q: %f", sig.Title, sig.Score)
		}
	}
}

func TestRecencyHalfLife(t *testing.T) {
	scorer := NewScorer(Weights{Recency: 1}, nil, week, scoreNow)

	// An item at the window midpoint decays to half.
	ranked := scorer.Score([]source.Record{
		rec("midpoint", 0, week/2),
	})

	if got := ranked[0].Score; got < 0.49 || got > 0.51 {
		t.Errorf("midpoint recency = %f, want ~0.5", got)
	}
}

func TestScoreEmptyBatch(t *testing.T) {
	scorer := NewScorer(DefaultWeights, nil, week, scoreNow)
	if ranked := scorer.Score(nil); len(ranked) != 0 {
		t.Errorf("expected empty result, got %d", len(ranked))
	}
}
