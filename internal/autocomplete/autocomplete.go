// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package autocomplete is the front end over the trie and the spell
// corrector. Prefix search runs first; when it finds nothing the query is
// retried with institutional prefixes prepended, and only then handed to
// the spell corrector. Every result carries a provenance tag so the caller
// can tell a prefix match from a correction.
//
// See docs/ARCHITECTURE.md § Input Resolution.
package autocomplete

import (
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/spell"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/trie"
)

// Provenance values attached to each suggestion.
const (
	SourceAutocomplete    = "autocomplete"
	SourceSpellCorrection = "spell_correction"
)

// minFallbackChars is the minimum single-token query length before the
// spell corrector is consulted. Shorter inputs are still being typed.
const minFallbackChars = 4

// institutionalPrefixes are prepended to the query when the bare prefix
// search comes up empty, so "toronto" can still surface
// "University of Toronto".
var institutionalPrefixes = []string{
	"university of",
	"college of",
	"institute of",
	"school of",
	"hospital of",
	"bank of",
}

// Suggestion is one resolved candidate with its provenance.
type Suggestion struct {
	Entry  trie.Entry `json:"entry"`
	Source string     `json:"source"`

	// Corrections is populated only for spell-corrected suggestions.
	Corrections []spell.Correction `json:"corrections,omitempty"`
}

// Service resolves user input against the institution dictionary.
type Service struct {
	names     *trie.Trie
	corrector *spell.Corrector
}

// New returns a service over the given trie and corrector.
func New(names *trie.Trie, corrector *spell.Corrector) *Service {
	return &Service{names: names, corrector: corrector}
}

// Suggest returns up to k candidates for the query. The empty slice means
// the input resolved to nothing; that is not an error.
func (s *Service) Suggest(query string, k int) []Suggestion {
	if k <= 0 {
		return nil
	}

	if entries := s.names.Suggest(query, k); len(entries) > 0 {
		return tagged(entries, SourceAutocomplete)
	}

	if entries := s.prefixVariations(query, k); len(entries) > 0 {
		return tagged(entries, SourceAutocomplete)
	}

	if !s.fallbackEligible(query) {
		return nil
	}

	corrected, err := s.corrector.Correct(query, k)
	if err != nil {
		// ErrNoSuggestion and any future corrector failure both mean
		// the query resolved to nothing.
		return nil
	}

	out := make([]Suggestion, len(corrected))
	for i, c := range corrected {
		out[i] = Suggestion{
			Entry:       c.Entry,
			Source:      SourceSpellCorrection,
			Corrections: c.Corrections,
		}
	}
	return out
}

// Resolve returns the single best candidate for the query, or false when
// nothing in the dictionary matches.
func (s *Service) Resolve(query string) (Suggestion, bool) {
	if e, ok := s.names.Get(query); ok {
		return Suggestion{Entry: e, Source: SourceAutocomplete}, true
	}
	got := s.Suggest(query, 1)
	if len(got) == 0 {
		return Suggestion{}, false
	}
	return got[0], true
}

// prefixVariations retries the prefix search with institutional prefixes
// prepended, merging results across variations up to k.
func (s *Service) prefixVariations(query string, k int) []trie.Entry {
	normalized := trie.Normalize(query)
	if normalized == "" {
		return nil
	}

	var merged []trie.Entry
	seen := make(map[string]bool)
	for _, p := range institutionalPrefixes {
		for _, e := range s.names.Suggest(p+" "+normalized, k) {
			if seen[e.Normalized] {
				continue
			}
			seen[e.Normalized] = true
			merged = append(merged, e)
			if len(merged) == k {
				return merged
			}
		}
	}
	return merged
}

// fallbackEligible gates the spell corrector: multi-token queries always
// qualify, single tokens only past the minimum length.
func (s *Service) fallbackEligible(query string) bool {
	words := splitWords(query)
	if len(words) >= 2 {
		return true
	}
	return len(words) == 1 && len(words[0]) >= minFallbackChars
}

func splitWords(query string) []string {
	return strings.Fields(trie.Normalize(query))
}

func tagged(entries []trie.Entry, source string) []Suggestion {
	out := make([]Suggestion, len(entries))
	for i, e := range entries {
		out[i] = Suggestion{Entry: e, Source: source}
	}
	return out
}
