// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spell

import (
	"errors"
	"sort"
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/trie"
)

// ErrNoSuggestion is returned when no trie-validated phrase exists within
// the edit budget. Callers treat it as "nothing to offer", not a failure.
var ErrNoSuggestion = errors.New("spell: no suggestion")

const (
	// maxCombinations caps the cartesian product of per-word candidate
	// sets. Pathological queries with many fuzzy words would otherwise
	// explode; when the cap is hit we keep the closest candidates per
	// position and drop the rest.
	maxCombinations = 128

	// candidatesPerWord keeps only the closest few alternatives per word.
	candidatesPerWord = 3
)

// institutionTerms are common last words of institution names. The final
// word of a query gets these as extra candidates so "harvard univeristy"
// still reaches "university" even when the delete index misses it.
var institutionTerms = []string{
	"university", "college", "institute", "school",
	"academy", "hospital", "clinic", "bank",
}

// Correction records one word-level substitution inside a suggestion.
type Correction struct {
	Position  int    `json:"position"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Distance  int    `json:"distance"`
}

// Suggestion is a full corrected phrase confirmed to exist in the trie.
type Suggestion struct {
	// Phrase is the trie entry's original-cased name.
	Phrase string `json:"phrase"`

	// Entry is the matching trie entry.
	Entry trie.Entry `json:"-"`

	// Corrections lists the words that changed, in position order.
	Corrections []Correction `json:"corrections,omitempty"`

	// TotalDistance is the summed edit distance across all words.
	TotalDistance int `json:"total_distance"`
}

// Corrector combines the delete index with trie validation. Build the
// index from the same dictionary that populated the trie.
type Corrector struct {
	index *Index
	names *trie.Trie
}

// NewCorrector returns a corrector over the given index and name trie.
func NewCorrector(index *Index, names *trie.Trie) *Corrector {
	return &Corrector{index: index, names: names}
}

// FromTrie builds a corrector whose word dictionary is harvested from the
// trie's own entries.
func FromTrie(names *trie.Trie, maxEdit int) *Corrector {
	ix := NewIndex(maxEdit)
	names.Walk(func(e trie.Entry) {
		ix.AddPhrase(e.Normalized, e.Frequency)
	})
	return NewCorrector(ix, names)
}

// Correct returns up to k trie-validated phrase suggestions for query,
// ordered by ascending total edit distance, ties broken by descending trie
// frequency. ErrNoSuggestion is returned when nothing qualifies.
func (c *Corrector) Correct(query string, k int) ([]Suggestion, error) {
	words := strings.Fields(trie.Normalize(query))
	if len(words) == 0 || k <= 0 {
		return nil, ErrNoSuggestion
	}

	// Exact match needs no correction work.
	if e, ok := c.names.Get(query); ok {
		return []Suggestion{{Phrase: e.Name, Entry: e}}, nil
	}

	sets := make([][]Candidate, len(words))
	for i, w := range words {
		sets[i] = c.wordCandidates(w, i == len(words)-1)
	}
	pruneToCap(sets)

	var suggestions []Suggestion
	seen := make(map[string]bool)

	combine(sets, func(combo []Candidate) {
		parts := make([]string, len(combo))
		for i, cand := range combo {
			parts[i] = cand.Term
		}
		phrase := strings.Join(parts, " ")
		if seen[phrase] {
			return
		}
		seen[phrase] = true

		entry, ok := c.names.Get(phrase)
		if !ok {
			return
		}

		s := Suggestion{Phrase: entry.Name, Entry: entry}
		for i, cand := range combo {
			if cand.Distance > 0 {
				s.Corrections = append(s.Corrections, Correction{
					Position:  i,
					Original:  words[i],
					Corrected: cand.Term,
					Distance:  cand.Distance,
				})
				s.TotalDistance += cand.Distance
			}
		}
		suggestions = append(suggestions, s)
	})

	if len(suggestions) == 0 {
		return nil, ErrNoSuggestion
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].TotalDistance != suggestions[j].TotalDistance {
			return suggestions[i].TotalDistance < suggestions[j].TotalDistance
		}
		if suggestions[i].Entry.Frequency != suggestions[j].Entry.Frequency {
			return suggestions[i].Entry.Frequency > suggestions[j].Entry.Frequency
		}
		return suggestions[i].Entry.Normalized < suggestions[j].Entry.Normalized
	})

	if len(suggestions) > k {
		suggestions = suggestions[:k]
	}
	return suggestions, nil
}

// wordCandidates returns the alternatives for one query word: the word
// itself (distance 0 even when unknown, since short words are never
// indexed), the closest index candidates, and, for the final word, any
// institution term within the edit budget.
func (c *Corrector) wordCandidates(word string, last bool) []Candidate {
	cands := []Candidate{{Term: word, Distance: 0, Frequency: 0}}

	for _, cand := range c.index.Lookup(word) {
		if cand.Term == word {
			continue
		}
		cands = append(cands, cand)
		if len(cands) > candidatesPerWord {
			break
		}
	}

	if last {
		for _, term := range institutionTerms {
			if term == word || hasTerm(cands, term) {
				continue
			}
			if d := EditDistance(word, term); d <= c.index.MaxEdit() {
				cands = append(cands, Candidate{Term: term, Distance: d})
			}
		}
	}
	return cands
}

func hasTerm(cands []Candidate, term string) bool {
	for _, c := range cands {
		if c.Term == term {
			return true
		}
	}
	return false
}

// pruneToCap trims candidate sets, widest first, until the cartesian
// product fits under maxCombinations. Sets are already ordered closest
// first, so trimming drops the most distant alternatives.
func pruneToCap(sets [][]Candidate) {
	for product(sets) > maxCombinations {
		widest := 0
		for i := range sets {
			if len(sets[i]) > len(sets[widest]) {
				widest = i
			}
		}
		if len(sets[widest]) <= 1 {
			return
		}
		sets[widest] = sets[widest][:len(sets[widest])-1]
	}
}

func product(sets [][]Candidate) int {
	p := 1
	for _, s := range sets {
		p *= len(s)
		if p > maxCombinations {
			return p
		}
	}
	return p
}

// combine invokes fn for every element of the cartesian product of sets.
func combine(sets [][]Candidate, fn func([]Candidate)) {
	combo := make([]Candidate, len(sets))
	var walk func(i int)
	walk = func(i int) {
		if i == len(sets) {
			fn(combo)
			return
		}
		for _, cand := range sets[i] {
			combo[i] = cand
			walk(i + 1)
		}
	}
	walk(0)
}
