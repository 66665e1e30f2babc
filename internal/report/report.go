// Package report assembles run results into a narrative Markdown report,
// a lossless JSON artifact, and the document section the patcher installs.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/agentdev/toolwatch/internal/signal"
	"github.com/agentdev/toolwatch/internal/source"
	"github.com/agentdev/toolwatch/internal/track"
)

// Report holds everything one run produced. The JSON encoding of this
// struct is the machine-readable artifact and round-trips losslessly.
type Report struct {
	// GeneratedAt is when the run produced this report
	GeneratedAt time.Time `json:"generated_at"`
	// WindowDays is the lookback window the signals were filtered to
	WindowDays int `json:"window_days"`
	// Changes are the detected upstream version changes, sorted by identity
	Changes []track.VersionChange `json:"changes"`
	// Signals are the ranked community signals, best first
	Signals []signal.RankedSignal `json:"signals"`
	// Omissions lists sources that failed and are absent from the data
	Omissions []source.Failure `json:"omissions"`
	// Trends summarizes keyword and tool mentions across the signals
	Trends Trends `json:"trends"`
}

// Trends aggregates what the ranked signals talk about.
type Trends struct {
	// Keywords counts configured keyword occurrences across signal titles
	Keywords []Mention `json:"keywords"`
	// Tools counts tracked-tool name occurrences across signal titles
	Tools []Mention `json:"tools"`
}

// Mention is one counted term.
type Mention struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// New assembles a Report, computing trend counts from the ranked signals.
// keywords and toolNames drive the trend analysis; both are matched
// case-insensitively against signal titles and bodies.
func New(changes []track.VersionChange, signals []signal.RankedSignal, omissions []source.Failure, keywords, toolNames []string, windowDays int, generatedAt time.Time) *Report {
	return &Report{
		GeneratedAt: generatedAt,
		WindowDays:  windowDays,
		Changes:     changes,
		Signals:     signals,
		Omissions:   omissions,
		Trends: Trends{
			Keywords: countMentions(signals, keywords),
			Tools:    countMentions(signals, toolNames),
		},
	}
}

// Empty reports whether the run produced no data at all.
func (r *Report) Empty() bool {
	return len(r.Changes) == 0 && len(r.Signals) == 0
}

// countMentions counts how many signals mention each term, dropping
// terms nothing mentions. Sorted by count descending, then term.
func countMentions(signals []signal.RankedSignal, terms []string) []Mention {
	var mentions []Mention
	for _, term := range terms {
		lowered := strings.ToLower(term)
		count := 0
		for _, sig := range signals {
			haystack := strings.ToLower(sig.Title + " " + sig.Body)
			if strings.Contains(haystack, lowered) {
				count++
			}
		}
		if count > 0 {
			mentions = append(mentions, Mention{Term: term, Count: count})
		}
	}

	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Count != mentions[j].Count {
			return mentions[i].Count > mentions[j].Count
		}
		return mentions[i].Term < mentions[j].Term
	})
	return mentions
}
