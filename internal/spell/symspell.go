// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spell proposes corrections for multi-word institution queries.
// Candidate words come from a SymSpell-style delete index built over the
// words of every dictionary name; whole phrases are only ever emitted when
// the trie confirms them, so no suggestion can leave the known vocabulary.
//
// See docs/ARCHITECTURE.md § Input Resolution.
package spell

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// prefixLen bounds the length of the word prefix the delete index is
	// built over. Longer words are truncated before delete generation,
	// which keeps the index small at a negligible recall cost.
	prefixLen = 7

	// minWordLen skips articles and prepositions; they are never corrected.
	minWordLen = 3
)

// Candidate is one dictionary word within the edit-distance budget.
type Candidate struct {
	Term      string
	Distance  int
	Frequency int
}

// Index is the delete-variant dictionary. Build it once at startup with
// AddWord/AddPhrase; lookups are read-only and safe for concurrent use.
type Index struct {
	maxEdit int
	words   map[string]int      // word -> accumulated frequency
	deletes map[string][]string // delete variant -> candidate words
}

// NewIndex returns an empty index accepting corrections up to maxEdit
// (clamped to [1, 2]).
func NewIndex(maxEdit int) *Index {
	if maxEdit < 1 {
		maxEdit = 1
	}
	if maxEdit > 2 {
		maxEdit = 2
	}
	return &Index{
		maxEdit: maxEdit,
		words:   make(map[string]int),
		deletes: make(map[string][]string),
	}
}

// MaxEdit returns the configured edit-distance budget.
func (ix *Index) MaxEdit() int { return ix.maxEdit }

// Size returns the number of distinct dictionary words.
func (ix *Index) Size() int { return len(ix.words) }

// AddPhrase splits a dictionary name into words and adds each, accumulating
// the phrase frequency onto every word.
func (ix *Index) AddPhrase(phrase string, frequency int) {
	for _, w := range strings.Fields(strings.ToLower(phrase)) {
		ix.AddWord(cleanWord(w), frequency)
	}
}

// AddWord registers a single dictionary word.
func (ix *Index) AddWord(word string, frequency int) {
	if len(word) < minWordLen {
		return
	}
	if frequency < 1 {
		frequency = 1
	}

	_, known := ix.words[word]
	ix.words[word] += frequency
	if known {
		return
	}

	for del := range deleteVariants(truncate(word, prefixLen), ix.maxEdit) {
		ix.deletes[del] = append(ix.deletes[del], word)
	}
}

// Contains reports whether word is in the dictionary.
func (ix *Index) Contains(word string) bool {
	_, ok := ix.words[strings.ToLower(word)]
	return ok
}

// Lookup returns dictionary words within the edit budget of word, ordered
// by ascending distance then descending frequency.
func (ix *Index) Lookup(word string) []Candidate {
	word = strings.ToLower(word)
	if word == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []Candidate

	consider := func(term string) {
		if seen[term] {
			return
		}
		seen[term] = true
		d := EditDistance(word, term)
		if d <= ix.maxEdit {
			out = append(out, Candidate{Term: term, Distance: d, Frequency: ix.words[term]})
		}
	}

	if _, ok := ix.words[word]; ok {
		consider(word)
	}
	for del := range deleteVariants(truncate(word, prefixLen), ix.maxEdit) {
		for _, term := range ix.deletes[del] {
			consider(term)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// deleteVariants returns every string reachable from word by deleting up to
// maxDeletes characters, the word itself included.
func deleteVariants(word string, maxDeletes int) map[string]bool {
	variants := map[string]bool{word: true}
	frontier := []string{word}

	for depth := 0; depth < maxDeletes; depth++ {
		var next []string
		for _, w := range frontier {
			runes := []rune(w)
			for i := range runes {
				del := string(runes[:i]) + string(runes[i+1:])
				if !variants[del] {
					variants[del] = true
					next = append(next, del)
				}
			}
		}
		frontier = next
	}
	return variants
}

// EditDistance returns the Levenshtein distance between two words.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min3(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// cleanWord strips everything but letters and digits.
func cleanWord(w string) string {
	var b strings.Builder
	for _, r := range w {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
