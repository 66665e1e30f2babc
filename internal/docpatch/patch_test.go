package docpatch

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const sampleDoc = `# Project Notes

Intro text.

## Trending Tools to Investigate

old line one
old line two

## Next Section

untouched tail
`

func TestPatchReplacesSection(t *testing.T) {
	patched, err := Patch(sampleDoc, "## Trending Tools to Investigate", "fresh content\n")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}

	if !strings.Contains(patched, "## Trending Tools to Investigate\nfresh content\n## Next Section") {
		t.Errorf("section body not replaced:\n%s", patched)
	}
	if strings.Contains(patched, "old line one") {
		t.Error("old section body survived the patch")
	}
	if !strings.Contains(patched, "## Next Section\n\nuntouched tail") {
		t.Error("content after the section was modified")
	}
	if !strings.HasPrefix(patched, "# Project Notes\n\nIntro text.") {
		t.Error("content before the section was modified")
	}
}

// The replaced span is exactly the content: no padding is injected
// around it.
func TestPatchReplacesSpanExactly(t *testing.T) {
	doc := "## Trending Tools\n<old rows>\n## Next"
	patched, err := Patch(doc, "## Trending Tools", "<new rows>")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if want := "## Trending Tools\n<new rows>\n## Next"; patched != want {
		t.Errorf("got %q, want %q", patched, want)
	}
}

func TestPatchEmptyContentEmptiesSection(t *testing.T) {
	patched, err := Patch(sampleDoc, "## Trending Tools to Investigate", "")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if !strings.Contains(patched, "## Trending Tools to Investigate\n## Next Section") {
		t.Errorf("section not emptied:\n%s", patched)
	}
}

func TestPatchSectionAtEndOfDocument(t *testing.T) {
	doc := "# Title\n\n## Last\n\nold tail\n"
	patched, err := Patch(doc, "## Last", "new tail")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if want := "# Title\n\n## Last\nnew tail"; patched != want {
		t.Errorf("got %q, want %q", patched, want)
	}

	// A trailing newline in the content is kept at end of document
	patched, err = Patch(doc, "## Last", "new tail\n")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if want := "# Title\n\n## Last\nnew tail\n"; patched != want {
		t.Errorf("got %q, want %q", patched, want)
	}
}

func TestPatchSubsectionsAreReplaced(t *testing.T) {
	doc := "## Section\n\n### Subsection\n\nnested\n\n## Other\n\nkeep\n"
	patched, err := Patch(doc, "## Section", "flat")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if strings.Contains(patched, "### Subsection") {
		t.Error("lower-level heading inside the section must be replaced")
	}
	if !strings.Contains(patched, "## Other\n\nkeep") {
		t.Error("sibling section must survive")
	}
}

func TestPatchContentMayNestDeeperHeadings(t *testing.T) {
	content := "### Details\ntext\n"
	once, err := Patch(sampleDoc, "## Trending Tools to Investigate", content)
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	twice, err := Patch(once, "## Trending Tools to Investigate", content)
	if err != nil {
		t.Fatalf("second patch failed: %v", err)
	}
	if once != twice {
		t.Error("deeper heading in content broke idempotence")
	}
}

func TestPatchRejectsSectionLevelHeadingInContent(t *testing.T) {
	_, err := Patch(sampleDoc, "## Trending Tools to Investigate", "a\n## Injected\nb")
	if !errors.Is(err, ErrHeadingInContent) {
		t.Errorf("expected ErrHeadingInContent for same-level heading, got %v", err)
	}

	_, err = Patch(sampleDoc, "## Trending Tools to Investigate", "# Top Level")
	if !errors.Is(err, ErrHeadingInContent) {
		t.Errorf("expected ErrHeadingInContent for higher-level heading, got %v", err)
	}
}

func TestPatchSectionNotFound(t *testing.T) {
	_, err := Patch(sampleDoc, "## Missing Section", "content")
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestPatchSectionAmbiguous(t *testing.T) {
	doc := "## Dup\n\na\n\n## Dup\n\nb\n"
	_, err := Patch(doc, "## Dup", "content")
	if !errors.Is(err, ErrSectionAmbiguous) {
		t.Errorf("expected ErrSectionAmbiguous, got %v", err)
	}
}

func TestPatchNonHeadingMarker(t *testing.T) {
	_, err := Patch(sampleDoc, "not a heading", "content")
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("expected ErrSectionNotFound for non-heading marker, got %v", err)
	}
}

func TestPatchPreservesCRLF(t *testing.T) {
	doc := strings.ReplaceAll(sampleDoc, "\n", "\r\n")
	patched, err := Patch(doc, "## Trending Tools to Investigate", "fresh")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if strings.Contains(strings.ReplaceAll(patched, "\r\n", ""), "\n") {
		t.Error("patched CRLF document contains bare LF line endings")
	}
	if !strings.Contains(patched, "fresh\r\n") {
		t.Error("new content not CRLF-terminated")
	}
}

// A document with mixed line endings keeps every untouched line's own
// terminator; inserted lines adopt the section heading's.
func TestPatchPreservesMixedLineEndings(t *testing.T) {
	doc := "# Title\r\n\r\n## Section\r\nold\r\n## Tail\nunix line\n"
	patched, err := Patch(doc, "## Section", "new")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if want := "# Title\r\n\r\n## Section\r\nnew\r\n## Tail\nunix line\n"; patched != want {
		t.Errorf("got %q, want %q", patched, want)
	}
}

func TestPatchIdempotent(t *testing.T) {
	once, err := Patch(sampleDoc, "## Trending Tools to Investigate", "stable content\n")
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Patch(once, "## Trending Tools to Investigate", "stable content\n")
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Errorf("second patch changed the document:\n--- once ---\n%s\n--- twice ---\n%s", once, twice)
	}
}

// Property: for arbitrary section bodies, patching twice with the same
// content equals patching once, and the document outside the section is
// byte-preserved.
func TestPatchProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genBody := gen.SliceOf(gen.AlphaString()).Map(func(lines []string) string {
		return strings.Join(lines, "\n")
	})

	properties.Property("patch is idempotent", prop.ForAll(
		func(content string) bool {
			once, err := Patch(sampleDoc, "## Trending Tools to Investigate", content)
			if err != nil {
				return false
			}
			twice, err := Patch(once, "## Trending Tools to Investigate", content)
			if err != nil {
				return false
			}
			return once == twice
		},
		genBody,
	))

	properties.Property("tail after the section is preserved", prop.ForAll(
		func(content string) bool {
			patched, err := Patch(sampleDoc, "## Trending Tools to Investigate", content)
			if err != nil {
				return false
			}
			return strings.HasSuffix(patched, "## Next Section\n\nuntouched tail\n")
		},
		genBody,
	))

	properties.TestingRun(t)
}
