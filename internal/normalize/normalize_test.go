// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"math"
	"testing"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/trie"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

func TestCanonicalExpandsAbbreviations(t *testing.T) {
	n := New(map[string]string{"mit": "massachusetts institute of technology"})

	got := n.Canonical("MIT")
	want := "massachusetts institute of technology"
	if got != want {
		t.Errorf("Canonical(MIT) = %q, want %q", got, want)
	}
	if n.Canonical(want) != want {
		t.Errorf("Canonical not stable on expanded form")
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	n := New(map[string]string{"mit": "massachusetts institute of technology"})
	inputs := []string{"MIT", "St. Jude's Hospital", "Université de Montréal", "  A  B  "}
	for _, in := range inputs {
		once := n.Canonical(in)
		if twice := n.Canonical(once); twice != once {
			t.Errorf("Canonical not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestCanonicalFoldsDiacritics(t *testing.T) {
	n := New(nil)
	if got := n.Canonical("Université de Montréal"); got != "universite de montreal" {
		t.Errorf("Canonical = %q", got)
	}
}

func TestFromTrieBuildsAcronyms(t *testing.T) {
	tr := trie.New()
	tr.Insert("Massachusetts Institute of Technology", 100, types.TypeUniversity)
	tr.Insert("Bank of America", 50, types.TypeBank)
	n := FromTrie(tr)

	if got := n.Canonical("mit"); got != "massachusetts institute of technology" {
		t.Errorf("Canonical(mit) = %q", got)
	}
	if got := n.Canonical("ba"); got != "bank of america" {
		t.Errorf("Canonical(ba) = %q", got)
	}
}

func TestFromTrieDropsAmbiguousAcronyms(t *testing.T) {
	tr := trie.New()
	tr.Insert("Michigan Institute of Trade", 10, types.TypeUniversity)
	tr.Insert("Massachusetts Institute of Technology", 100, types.TypeUniversity)
	n := FromTrie(tr)

	// Both collapse to "mit": the acronym must not expand to either.
	if got := n.Canonical("mit"); got != "mit" {
		t.Errorf("ambiguous acronym expanded: %q", got)
	}
}

func TestKeyAndFingerprint(t *testing.T) {
	n := New(map[string]string{"mit": "massachusetts institute of technology"})

	base := types.Request{Name: "MIT", Type: types.TypeUniversity}
	k := n.Key(base)
	if k.Canonical != "massachusetts institute of technology" {
		t.Errorf("Canonical = %q", k.Canonical)
	}
	if k.String() == "" || k.Fingerprint == "" {
		t.Error("key serialization must be non-empty")
	}

	// ForceRefresh must not change the fingerprint; a location must.
	refreshed := base
	refreshed.Options.ForceRefresh = true
	if n.Key(refreshed).Fingerprint != k.Fingerprint {
		t.Error("ForceRefresh changed the fingerprint")
	}
	located := base
	located.Options.Location = "Cambridge"
	if n.Key(located).Fingerprint == k.Fingerprint {
		t.Error("Location did not change the fingerprint")
	}

	// Keyword order is canonicalized away.
	a, b := base, base
	a.Options.AdditionalKeywords = []string{"research", "engineering"}
	b.Options.AdditionalKeywords = []string{"engineering", "research"}
	if n.Key(a).Fingerprint != n.Key(b).Fingerprint {
		t.Error("keyword order changed the fingerprint")
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"harvard university", "harvard college"},
		{"bank of america", "bank of american samoa"},
		{"mit", "massachusetts institute of technology"},
		{"", "anything"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	if got := Similarity("harvard university", "harvard university"); got != 1 {
		t.Errorf("identical similarity = %v, want 1", got)
	}
	if got := Similarity("", "harvard"); got != 0 {
		t.Errorf("empty similarity = %v, want 0", got)
	}

	got := Similarity("harvard university", "harvard college")
	if got <= 0 || got >= 1 {
		t.Errorf("partial similarity = %v, want in (0, 1)", got)
	}
}

func TestSimilarityComponents(t *testing.T) {
	// Same token set, different order: Jaccard 1, sequence ratio < 1.
	a, b := "university harvard", "harvard university"
	got := Similarity(a, b)
	if got >= 1 {
		t.Errorf("reordered tokens scored %v, want < 1", got)
	}
	if got < 0.4 {
		t.Errorf("reordered tokens scored %v, want at least the Jaccard share", got)
	}
}
