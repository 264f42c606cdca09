package trie

import (
	"reflect"
	"testing"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Harvard University", "harvard university"},
		{"punctuation", "St. Jude's Hospital", "st jude s hospital"},
		{"whitespace collapse", "  Bank   of  America ", "bank of america"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Harvard University", "St. Jude's", "  A  B  ", "MIT"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestInsertAndContains(t *testing.T) {
	tr := New()
	tr.Insert("Harvard University", 10, types.TypeUniversity)

	if !tr.Contains("harvard university") {
		t.Error("Contains(lowercase) = false, want true")
	}
	if !tr.Contains("HARVARD UNIVERSITY") {
		t.Error("Contains(uppercase) = false, want true")
	}
	if tr.Contains("harvard") {
		t.Error("Contains(prefix) = true, want false")
	}
	if tr.Size() != 1 {
		t.Errorf("Size() = %d, want 1", tr.Size())
	}
}

func TestInsertIdempotent(t *testing.T) {
	tr := New()
	tr.Insert("Harvard University", 5, types.TypeUnknown)
	tr.Insert("harvard university", 10, types.TypeUniversity)
	tr.Insert("Harvard  University", 3, types.TypeHospital)

	if tr.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", tr.Size())
	}

	e, ok := tr.Get("harvard university")
	if !ok {
		t.Fatal("Get returned no entry")
	}
	if e.Frequency != 10 {
		t.Errorf("Frequency = %d, want 10 (higher kept)", e.Frequency)
	}
	// The null type from the first insert is replaced by the first non-null
	// type; the later hospital insert must not override it.
	if e.Type != types.TypeUniversity {
		t.Errorf("Type = %q, want %q", e.Type, types.TypeUniversity)
	}
	if e.Name != "Harvard University" {
		t.Errorf("Name = %q, want original casing preserved", e.Name)
	}
}

func TestSuggestOrdering(t *testing.T) {
	tr := New()
	tr.Insert("Massachusetts Institute of Technology", 100, types.TypeUniversity)
	tr.Insert("Massachusetts General Hospital", 80, types.TypeHospital)
	tr.Insert("Massey University", 40, types.TypeUniversity)
	tr.Insert("Masseter Clinic", 5, types.TypeHospital)

	got := tr.Suggest("mass", 3)
	var names []string
	for _, e := range got {
		names = append(names, e.Name)
	}

	want := []string{
		"Massachusetts Institute of Technology",
		"Massachusetts General Hospital",
		"Massey University",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Suggest(mass, 3) = %v, want %v", names, want)
	}
}

func TestSuggestTieBreak(t *testing.T) {
	tr := New()
	tr.Insert("Beta College", 10, types.TypeUniversity)
	tr.Insert("Alpha College... B Campus", 10, types.TypeUniversity)

	// Equal frequency: ascending normalized name.
	got := tr.Suggest("", 5)
	if len(got) != 0 {
		t.Fatalf("Suggest with empty prefix = %d entries, want 0", len(got))
	}

	got = tr.Suggest("alpha", 5)
	if len(got) != 1 || got[0].Name != "Alpha College... B Campus" {
		t.Fatalf("Suggest(alpha) = %v", got)
	}

	tr2 := New()
	tr2.Insert("ac zeta", 7, types.TypeGeneral)
	tr2.Insert("ac alpha", 7, types.TypeGeneral)
	got = tr2.Suggest("ac", 5)
	if got[0].Normalized != "ac alpha" || got[1].Normalized != "ac zeta" {
		t.Errorf("tie-break order = %q, %q; want ac alpha, ac zeta", got[0].Normalized, got[1].Normalized)
	}
}

func TestSuggestFrequencyNonIncreasing(t *testing.T) {
	tr := New()
	tr.Insert("state university of a", 3, types.TypeUniversity)
	tr.Insert("state university of b", 90, types.TypeUniversity)
	tr.Insert("state college", 40, types.TypeUniversity)
	tr.Insert("state bank", 40, types.TypeBank)

	got := tr.Suggest("state", 10)
	for i := 1; i < len(got); i++ {
		if got[i].Frequency > got[i-1].Frequency {
			t.Fatalf("frequencies not non-increasing at %d: %v", i, got)
		}
	}
}

func TestWalk(t *testing.T) {
	tr := New()
	tr.Insert("A One", 1, types.TypeGeneral)
	tr.Insert("B Two", 2, types.TypeGeneral)

	seen := map[string]bool{}
	tr.Walk(func(e Entry) { seen[e.Normalized] = true })

	if !seen["a one"] || !seen["b two"] {
		t.Errorf("Walk missed entries: %v", seen)
	}
}
