package signal

import (
	"math"
	"strings"
	"time"

	"github.com/agentdev/toolwatch/internal/source"
)

// Weights controls the relative contribution of each scoring component.
// The three weights must sum to 1.
type Weights struct {
	Engagement float64
	Recency    float64
	Keywords   float64
}

// DefaultWeights favors engagement, with recency and keyword relevance
// as secondary signals.
var DefaultWeights = Weights{Engagement: 0.5, Recency: 0.3, Keywords: 0.2}

// Scorer computes relevance scores for a batch of signals.
// Engagement is normalized against the batch maximum, so scores are only
// comparable within one run.
type Scorer struct {
	weights  Weights
	keywords []string
	window   time.Duration
	now      time.Time
}

// NewScorer builds a Scorer for one ranking run. Keywords are matched
// case-insensitively against title and body.
func NewScorer(weights Weights, keywords []string, window time.Duration, now time.Time) *Scorer {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Scorer{
		weights:  weights,
		keywords: lowered,
		window:   window,
		now:      now,
	}
}

// Score computes the weighted score for a batch of records.
// The result is ordered like the input.
func (s *Scorer) Score(records []source.Record) []RankedSignal {
	maxEngagement := 0.0
	for _, rec := range records {
		if e := engagementValue(rec.Engagement); e > maxEngagement {
			maxEngagement = e
		}
	}

	ranked := make([]RankedSignal, len(records))
	for i, rec := range records {
		relevance, matched := s.keywordScore(rec)
		score := s.weights.Engagement*s.engagementScore(rec, maxEngagement) +
			s.weights.Recency*s.recencyScore(rec) +
			s.weights.Keywords*relevance
		ranked[i] = RankedSignal{Record: rec, Score: score, Keywords: matched}
	}
	return ranked
}

// engagementValue compresses raw vote/comment counts: the difference
// between 10 and 100 upvotes matters more than between 1000 and 1090.
func engagementValue(engagement int) float64 {
	if engagement < 0 {
		engagement = 0
	}
	return math.Log10(1 + float64(engagement))
}

func (s *Scorer) engagementScore(rec source.Record, maxEngagement float64) float64 {
	if maxEngagement == 0 {
		return 0
	}
	return engagementValue(rec.Engagement) / maxEngagement
}

// recencyScore decays exponentially with age, with a half-life of half
// the lookback window: an item from the window's midpoint scores 0.5.
func (s *Scorer) recencyScore(rec source.Record) float64 {
	if rec.PublishedAt.IsZero() {
		return 0
	}
	age := s.now.Sub(rec.PublishedAt)
	if age < 0 {
		age = 0
	}
	halfLife := s.window / 2
	if halfLife <= 0 {
		return 0
	}
	return math.Pow(0.5, age.Hours()/halfLife.Hours())
}

// keywordScore is the fraction of configured keywords found in the
// signal's title or body, plus the matched keywords themselves.
func (s *Scorer) keywordScore(rec source.Record) (float64, []string) {
	if len(s.keywords) == 0 {
		return 0, nil
	}
	haystack := strings.ToLower(rec.Title + " " + rec.Body)
	var matched []string
	for _, kw := range s.keywords {
		if strings.Contains(haystack, kw) {
			matched = append(matched, kw)
		}
	}
	return float64(len(matched)) / float64(len(s.keywords)), matched
}
