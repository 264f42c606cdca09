// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package autocomplete

import (
	"testing"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/spell"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/trie"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

func newService(entries map[string]int) *Service {
	tr := trie.New()
	for name, freq := range entries {
		tr.Insert(name, freq, types.TypeUnknown)
	}
	return New(tr, spell.FromTrie(tr, 2))
}

func TestSuggestPrefixHit(t *testing.T) {
	s := newService(map[string]int{
		"massachusetts institute of technology": 100,
		"massachusetts general hospital":        80,
		"massey university":                     40,
		"masseter clinic":                       5,
	})

	got := s.Suggest("mass", 3)
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	want := []string{
		"massachusetts institute of technology",
		"massachusetts general hospital",
		"massey university",
	}
	for i, w := range want {
		if got[i].Entry.Normalized != w {
			t.Errorf("suggestion %d = %q, want %q", i, got[i].Entry.Normalized, w)
		}
		if got[i].Source != SourceAutocomplete {
			t.Errorf("suggestion %d source = %q, want %q", i, got[i].Source, SourceAutocomplete)
		}
	}
}

func TestSuggestInstitutionalPrefixVariation(t *testing.T) {
	s := newService(map[string]int{
		"university of toronto": 60,
	})

	got := s.Suggest("toronto", 5)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(got), got)
	}
	if got[0].Entry.Normalized != "university of toronto" {
		t.Errorf("entry = %q", got[0].Entry.Normalized)
	}
	if got[0].Source != SourceAutocomplete {
		t.Errorf("source = %q, want %q", got[0].Source, SourceAutocomplete)
	}
}

func TestSuggestSpellFallback(t *testing.T) {
	s := newService(map[string]int{
		"harvard university": 10,
		"harvest":            1,
	})

	got := s.Suggest("harvrd university", 5)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(got), got)
	}
	if got[0].Entry.Normalized != "harvard university" {
		t.Errorf("entry = %q", got[0].Entry.Normalized)
	}
	if got[0].Source != SourceSpellCorrection {
		t.Errorf("source = %q, want %q", got[0].Source, SourceSpellCorrection)
	}
	if len(got[0].Corrections) != 1 || got[0].Corrections[0].Corrected != "harvard" {
		t.Errorf("corrections = %+v", got[0].Corrections)
	}
}

func TestSuggestShortSingleTokenSkipsFallback(t *testing.T) {
	s := newService(map[string]int{"yale university": 10})

	// "yle" is a single token under the length gate: no spell fallback.
	if got := s.Suggest("yle", 5); len(got) != 0 {
		t.Errorf("short token got %+v, want none", got)
	}

	// Four characters qualifies.
	got := s.Suggest("yalee university", 5)
	if len(got) == 0 {
		t.Error("multi-token query should reach the spell corrector")
	}
}

func TestSuggestNothing(t *testing.T) {
	s := newService(map[string]int{"harvard university": 10})

	if got := s.Suggest("zzzzzzz qqqqqqq", 5); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
	if got := s.Suggest("harvard", 0); got != nil {
		t.Errorf("k=0 got %+v, want nil", got)
	}
}

func TestResolve(t *testing.T) {
	s := newService(map[string]int{
		"harvard university": 10,
		"harvard college":    5,
	})

	got, ok := s.Resolve("Harvard University")
	if !ok || got.Entry.Normalized != "harvard university" {
		t.Fatalf("Resolve exact = %+v, %v", got, ok)
	}

	got, ok = s.Resolve("harvard")
	if !ok || got.Entry.Normalized != "harvard university" {
		t.Fatalf("Resolve prefix = %+v, %v (higher frequency should win)", got, ok)
	}

	if _, ok := s.Resolve("qqqqqq zzzzzz"); ok {
		t.Error("Resolve of garbage should report false")
	}
}
