// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content assembles the single bounded text payload the extractor
// consumes. Four sources are tried in priority order: crawl artifacts,
// the search description, the search snippet, and caller-supplied direct
// text. Each branch has its own budget and truncation happens at sentence
// or paragraph boundaries whenever one is close enough.
//
// See docs/ARCHITECTURE.md § Content Preparation.
package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Branch budgets in characters.
const (
	PerPageCap     = 2000
	TotalCap       = 12000
	DescriptionCap = 8000
	SnippetCap     = 4000
	DirectCap      = 6000
)

// boundaryWindow is the fraction of a budget within which a sentence or
// paragraph boundary is preferred over a hard cut.
const boundaryWindow = 0.10

// Source identifies which branch produced the payload.
type Source string

const (
	SourceCrawl       Source = "crawl"
	SourceDescription Source = "search_description"
	SourceSnippet     Source = "search_snippet"
	SourceDirect      Source = "direct"
	SourceNone        Source = "none"
)

// Input bundles everything upstream may have produced.
type Input struct {
	Artifacts   []types.ScoredArtifact
	Description string
	Snippet     string
	Direct      string
}

// Prepared is the bounded payload plus its provenance.
type Prepared struct {
	Text   string
	Source Source
}

// Prepare selects the best available source and bounds it. The returned
// text never exceeds the selected branch's cap.
func Prepare(in Input) Prepared {
	if len(in.Artifacts) > 0 {
		if text := fromArtifacts(in.Artifacts); text != "" {
			return Prepared{Text: text, Source: SourceCrawl}
		}
	}
	if multiParagraph(in.Description) {
		return Prepared{Text: Truncate(in.Description, DescriptionCap), Source: SourceDescription}
	}
	if s := firstNonEmpty(in.Snippet, in.Description); s != "" {
		return Prepared{Text: Truncate(s, SnippetCap), Source: SourceSnippet}
	}
	if strings.TrimSpace(in.Direct) != "" {
		return Prepared{Text: Truncate(in.Direct, DirectCap), Source: SourceDirect}
	}
	return Prepared{Source: SourceNone}
}

// fromArtifacts concatenates per-page sections with attribution headers:
// page title, bounded markdown, compact JSON-LD, each page capped and the
// whole capped at TotalCap.
func fromArtifacts(artifacts []types.ScoredArtifact) string {
	var b strings.Builder
	for i, a := range artifacts {
		section := pageSection(i+1, a)
		if section == "" {
			continue
		}
		remaining := TotalCap - b.Len()
		if remaining <= 0 {
			break
		}
		if len(section) > remaining {
			section = Truncate(section, remaining)
			if section == "" {
				break
			}
		}
		b.WriteString(section)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func pageSection(n int, a types.ScoredArtifact) string {
	body := Truncate(strings.TrimSpace(a.Markdown.PrimaryContent), PerPageCap)
	jsonLD := Truncate(strings.Join(a.StructuredData, "\n"), PerPageCap)
	if body == "" && jsonLD == "" && a.Title == "" {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[page %d: %s]\n", n, a.URL)
	if a.Title != "" {
		b.WriteString(a.Title + "\n")
	}
	if body != "" {
		b.WriteString(body + "\n")
	}
	if jsonLD != "" {
		b.WriteString(jsonLD + "\n")
	}
	return strings.TrimSpace(b.String())
}

// Truncate bounds s to budget characters, cutting at a paragraph or
// sentence boundary within 10% of the budget when one exists, falling
// back to a whitespace boundary, then to a hard cut.
func Truncate(s string, budget int) string {
	s = strings.TrimSpace(s)
	if budget <= 0 {
		return ""
	}
	if len(s) <= budget {
		return s
	}

	window := int(float64(budget) * boundaryWindow)
	floor := budget - window
	cut := s[:runeBoundary(s, budget)]

	if i := strings.LastIndex(cut, "\n\n"); i >= floor {
		return strings.TrimSpace(cut[:i])
	}
	if i := lastSentenceEnd(cut); i >= floor {
		return strings.TrimSpace(cut[:i])
	}
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		return strings.TrimSpace(cut[:i])
	}
	return cut
}

// runeBoundary backs n off to the nearest rune start so a byte cut never
// splits a multi-byte sequence.
func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

// lastSentenceEnd returns the index just past the final sentence
// terminator, or -1.
func lastSentenceEnd(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\n' {
				return i + 1
			}
		}
	}
	return -1
}

func multiParagraph(s string) bool {
	return strings.Contains(strings.TrimSpace(s), "\n\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
