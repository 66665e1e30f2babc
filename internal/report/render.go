package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Markdown renders the narrative report a maintainer reads in the
// morning: version changes first, then ranked signals, then what the
// run could not fetch.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tool Watch Report — %s\n\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Covering the last %d days. Generated at %s.\n\n",
		r.WindowDays, r.GeneratedAt.Format("15:04 MST"))

	b.WriteString("## Version Changes\n\n")
	if len(r.Changes) == 0 {
		b.WriteString("No upstream version changes detected.\n\n")
	} else {
		for _, change := range r.Changes {
			fmt.Fprintf(&b, "- **%s**: %s → %s\n",
				change.Package.Identity(), change.OldVersion, change.NewVersion)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Community Signals\n\n")
	if len(r.Signals) == 0 {
		b.WriteString("No notable community signals in the window.\n\n")
	} else {
		for _, sig := range r.Signals {
			fmt.Fprintf(&b, "- **%s** (%.2f) — %s\n", sig.Title, sig.Score, sig.URL)
			detail := fmt.Sprintf("  %s, %s engagement, %s",
				sig.Source, humanize.Comma(int64(sig.Engagement)), humanize.Time(sig.PublishedAt))
			if sig.Duplicates > 0 {
				detail += fmt.Sprintf(", seen in %d places", sig.Duplicates+1)
			}
			if len(sig.Keywords) > 0 {
				detail += ", keywords: " + strings.Join(sig.Keywords, ", ")
			}
			b.WriteString(detail + "\n")
		}
		b.WriteString("\n")
	}

	if len(r.Trends.Keywords) > 0 || len(r.Trends.Tools) > 0 {
		b.WriteString("## Trends\n\n")
		if len(r.Trends.Keywords) > 0 {
			b.WriteString("Hot topics: " + renderMentions(r.Trends.Keywords) + "\n\n")
		}
		if len(r.Trends.Tools) > 0 {
			b.WriteString("Tools being discussed: " + renderMentions(r.Trends.Tools) + "\n\n")
		}
	}

	if len(r.Omissions) > 0 {
		b.WriteString("## Omissions\n\n")
		b.WriteString("The following sources failed and are not reflected above:\n\n")
		for _, failure := range r.Omissions {
			fmt.Fprintf(&b, "- %s: %s\n", failure.Source, failure.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderMentions(mentions []Mention) string {
	parts := make([]string, len(mentions))
	for i, m := range mentions {
		parts[i] = fmt.Sprintf("%s (%d)", m.Term, m.Count)
	}
	return strings.Join(parts, ", ")
}

// JSON renders the machine-readable artifact. Every field of the report
// survives a decode back into Report.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// Section renders the Markdown fragment installed into the tracked
// document between the section markers: a table of trending signals
// plus a compact version-change list. The patcher replaces the section
// span with this text verbatim, so the fragment brings its own blank
// lines and never contains a heading. Rendering the same report twice
// yields byte-identical output so the patch stays idempotent.
func (r *Report) Section() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n_Last updated: %s_\n\n", r.GeneratedAt.Format("2006-01-02"))

	if len(r.Signals) > 0 {
		b.WriteString("| Signal | Source | Score | Link |\n")
		b.WriteString("|--------|--------|-------|------|\n")
		for _, sig := range r.Signals {
			fmt.Fprintf(&b, "| %s | %s | %.2f | [discussion](%s) |\n",
				escapeTableCell(sig.Title), sig.Source, sig.Score, sig.URL)
		}
	} else {
		b.WriteString("No trending tools this week.\n")
	}

	if len(r.Changes) > 0 {
		b.WriteString("\nRecent version changes: ")
		parts := make([]string, len(r.Changes))
		for i, change := range r.Changes {
			parts[i] = fmt.Sprintf("%s %s → %s",
				change.Package.Identity(), change.OldVersion, change.NewVersion)
		}
		b.WriteString(strings.Join(parts, "; ") + "\n")
	}

	b.WriteString("\n")
	return b.String()
}

// escapeTableCell keeps pipes in titles from breaking the table layout.
func escapeTableCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
