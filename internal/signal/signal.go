// Package signal scores, deduplicates, and ranks community signals so the
// report surfaces only the strongest item of each discussion cluster.
package signal

import (
	"github.com/agentdev/toolwatch/internal/source"
)

// RankedSignal is a community signal with its computed score and the
// dedup cluster it survived from.
type RankedSignal struct {
	source.Record

	// Score is the weighted relevance score in [0, 1]
	Score float64 `json:"score"`
	// Keywords are the configured keywords this signal matched
	Keywords []string `json:"keywords,omitempty"`
	// Cluster identifies the duplicate group this signal represents.
	// Signals sharing a cluster id were judged to describe the same topic.
	Cluster int `json:"cluster"`
	// Duplicates counts the other signals folded into this one
	Duplicates int `json:"duplicates"`
}
