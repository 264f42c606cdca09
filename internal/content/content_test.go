// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

func artifact(url, title, markdown string) types.ScoredArtifact {
	return types.ScoredArtifact{
		CrawlArtifact: types.CrawlArtifact{
			URL:      url,
			Title:    title,
			Markdown: types.MarkdownBundle{PrimaryContent: markdown},
		},
	}
}

func TestPrepareCrawlBranch(t *testing.T) {
	in := Input{
		Artifacts: []types.ScoredArtifact{
			artifact("https://a.edu/1", "Page One", "First page content."),
			artifact("https://a.edu/2", "Page Two", "Second page content."),
		},
		Description: "ignored when crawl succeeded",
	}
	got := Prepare(in)

	if got.Source != SourceCrawl {
		t.Fatalf("Source = %q, want crawl", got.Source)
	}
	for _, want := range []string{
		"[page 1: https://a.edu/1]", "Page One", "First page content.",
		"[page 2: https://a.edu/2]", "Second page content.",
	} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("payload missing %q:\n%s", want, got.Text)
		}
	}
}

func TestPrepareCrawlIncludesJSONLD(t *testing.T) {
	a := artifact("https://a.edu/1", "Page", "Body text.")
	a.StructuredData = []string{`{"@type":"CollegeOrUniversity"}`}
	got := Prepare(Input{Artifacts: []types.ScoredArtifact{a}})

	if !strings.Contains(got.Text, `{"@type":"CollegeOrUniversity"}`) {
		t.Errorf("payload missing JSON-LD:\n%s", got.Text)
	}
}

func TestPrepareDescriptionBranch(t *testing.T) {
	in := Input{Description: "First paragraph about the institution.\n\nSecond paragraph with more detail."}
	got := Prepare(in)

	if got.Source != SourceDescription {
		t.Fatalf("Source = %q, want description", got.Source)
	}
	if len(got.Text) > DescriptionCap {
		t.Errorf("len = %d over cap", len(got.Text))
	}
}

func TestPrepareSnippetBranch(t *testing.T) {
	got := Prepare(Input{Snippet: "A short snippet."})
	if got.Source != SourceSnippet || got.Text != "A short snippet." {
		t.Errorf("got %+v", got)
	}

	// A single-paragraph description is treated as a snippet.
	got = Prepare(Input{Description: "One paragraph only."})
	if got.Source != SourceSnippet {
		t.Errorf("Source = %q, want snippet", got.Source)
	}
}

func TestPrepareDirectBranch(t *testing.T) {
	got := Prepare(Input{Direct: "Caller supplied text."})
	if got.Source != SourceDirect || got.Text != "Caller supplied text." {
		t.Errorf("got %+v", got)
	}
}

func TestPrepareNothing(t *testing.T) {
	got := Prepare(Input{})
	if got.Source != SourceNone || got.Text != "" {
		t.Errorf("got %+v", got)
	}
}

func TestPrepareSizeBounds(t *testing.T) {
	long := strings.Repeat("All work and no play makes a dull page. ", 400) // ~16k chars

	var artifacts []types.ScoredArtifact
	for i := 0; i < 12; i++ {
		artifacts = append(artifacts, artifact("https://a.edu/p", "T", long))
	}

	tests := []struct {
		name string
		in   Input
		cap  int
	}{
		{"crawl", Input{Artifacts: artifacts}, TotalCap},
		{"description", Input{Description: long + "\n\n" + long}, DescriptionCap},
		{"snippet", Input{Snippet: long}, SnippetCap},
		{"direct", Input{Direct: long}, DirectCap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prepare(tt.in)
			if len(got.Text) > tt.cap {
				t.Errorf("len = %d, cap %d", len(got.Text), tt.cap)
			}
			if got.Text == "" {
				t.Error("payload empty")
			}
		})
	}
}

func TestTruncateBoundaries(t *testing.T) {
	// Sentence boundary inside the 10% window.
	s := "First sentence is here. Second sentence follows it closely and runs longer."
	got := Truncate(s, 30)
	if got != "First sentence is here." {
		t.Errorf("Truncate = %q", got)
	}

	// Paragraph boundary wins over mid-paragraph cut.
	s = "Opening paragraph text here.\n\nSecond paragraph continues with more words."
	got = Truncate(s, 32)
	if got != "Opening paragraph text here." {
		t.Errorf("Truncate = %q", got)
	}

	// No boundary in the window: fall back to whitespace.
	s = strings.Repeat("word ", 30)
	got = Truncate(s, 52)
	if len(got) > 52 || strings.HasSuffix(got, "wor") {
		t.Errorf("Truncate = %q (len %d)", got, len(got))
	}

	// No whitespace at all: hard cut.
	s = strings.Repeat("x", 100)
	if got := Truncate(s, 40); len(got) != 40 {
		t.Errorf("hard cut len = %d", len(got))
	}
}

func TestTruncateNeverSplitsRunes(t *testing.T) {
	// Each é is two bytes; an odd budget lands mid-rune without backoff.
	s := strings.Repeat("é", 50)
	for budget := 1; budget <= 10; budget++ {
		got := Truncate(s, budget)
		if !utf8.ValidString(got) {
			t.Errorf("budget %d produced invalid UTF-8: %q", budget, got)
		}
		if len(got) > budget {
			t.Errorf("budget %d exceeded: len %d", budget, len(got))
		}
	}
}

func TestTruncateShortInputUntouched(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Errorf("zero budget = %q", got)
	}
}
