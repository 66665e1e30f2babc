// Package docpatch replaces one marked section of a Markdown document,
// leaving every other byte untouched.
package docpatch

import (
	"errors"
	"fmt"
	"strings"
)

// Error variables for document patching errors
var (
	// ErrSectionNotFound is returned when the marker heading does not occur
	ErrSectionNotFound = errors.New("section heading not found in document")
	// ErrSectionAmbiguous is returned when the marker heading occurs more than once
	ErrSectionAmbiguous = errors.New("section heading occurs more than once")
	// ErrHeadingInContent is returned when the replacement content contains a
	// heading at or above the section's level, which would move the section
	// boundary on the next patch
	ErrHeadingInContent = errors.New("content contains a heading at or above the section level")
)

// line is one document line with its own terminator, so documents with
// mixed line endings survive a patch byte-for-byte outside the section.
type line struct {
	text string
	eol  string
}

// splitLines splits a document into lines, keeping each line's
// terminator ("\n", "\r\n", or none for a final unterminated line).
func splitLines(doc string) []line {
	var lines []line
	for len(doc) > 0 {
		idx := strings.IndexByte(doc, '\n')
		if idx == -1 {
			lines = append(lines, line{text: doc})
			break
		}
		text, eol := doc[:idx], "\n"
		if strings.HasSuffix(text, "\r") {
			text, eol = text[:len(text)-1], "\r\n"
		}
		lines = append(lines, line{text: text, eol: eol})
		doc = doc[idx+1:]
	}
	return lines
}

// Patch replaces the body of the section introduced by heading with
// content, returning the updated document. The section ends at the next
// heading of equal or higher level, or at end of document. The heading
// line itself is preserved; content replaces everything strictly between
// it and the section end, with no extra padding — callers supply their
// own surrounding blank lines. Every byte outside the section, including
// each line's ending style, is preserved exactly. Patching an already
// patched document with the same content returns the document unchanged;
// to keep that re-location sound, content must not itself contain a
// heading at or above the section's level.
func Patch(doc, heading, content string) (string, error) {
	lines := splitLines(doc)

	heading = strings.TrimSpace(heading)
	level := headingLevel(heading)
	if level == 0 {
		return "", fmt.Errorf("%w: %q is not a Markdown heading", ErrSectionNotFound, heading)
	}

	start := -1
	for i := range lines {
		if strings.TrimSpace(lines[i].text) != heading {
			continue
		}
		if start != -1 {
			return "", fmt.Errorf("%w: %q", ErrSectionAmbiguous, heading)
		}
		start = i
	}
	if start == -1 {
		return "", fmt.Errorf("%w: %q", ErrSectionNotFound, heading)
	}

	// The section runs until the next heading of equal or higher level.
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if l := headingLevel(strings.TrimSpace(lines[i].text)); l != 0 && l <= level {
			end = i
			break
		}
	}

	// A single trailing newline is the last line's terminator, not an
	// extra blank line; empty content empties the section entirely.
	var body []string
	if content != "" {
		body = strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	}
	for _, b := range body {
		if l := headingLevel(strings.TrimSpace(b)); l != 0 && l <= level {
			return "", fmt.Errorf("%w: %q", ErrHeadingInContent, b)
		}
	}

	// New lines adopt the heading line's terminator.
	eol := lines[start].eol
	if eol == "" {
		eol = "\n"
	}

	var b strings.Builder
	for i := 0; i <= start; i++ {
		b.WriteString(lines[i].text)
		b.WriteString(lines[i].eol)
	}
	if lines[start].eol == "" && len(body) > 0 {
		b.WriteString(eol)
	}
	for j, text := range body {
		b.WriteString(text)
		switch {
		case j < len(body)-1 || end < len(lines):
			b.WriteString(eol)
		case strings.HasSuffix(content, "\n"):
			// Section at end of document keeps the content's own
			// final-newline choice.
			b.WriteString(eol)
		}
	}
	for i := end; i < len(lines); i++ {
		b.WriteString(lines[i].text)
		b.WriteString(lines[i].eol)
	}
	return b.String(), nil
}

// headingLevel returns the ATX heading level of a line, 0 when the line
// is not a heading.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level == len(line) || line[level] == ' ' || line[level] == '\t' {
		return level
	}
	return 0
}
