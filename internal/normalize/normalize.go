// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes institution queries into cache keys and
// scores the similarity between two canonical forms. Two queries that mean
// the same institution must normalize to the same key, so the caches can
// serve "MIT" and "Massachusetts Institute of Technology" from one entry.
//
// See docs/ARCHITECTURE.md § Caching.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/spell"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/trie"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Normalizer canonicalizes names using a fixed abbreviation table.
type Normalizer struct {
	abbreviations map[string]string
}

// New returns a normalizer with the given acronym expansion table. Keys
// must already be in canonical form (lowercase, no punctuation).
func New(abbreviations map[string]string) *Normalizer {
	if abbreviations == nil {
		abbreviations = map[string]string{}
	}
	return &Normalizer{abbreviations: abbreviations}
}

// FromTrie builds the abbreviation table from the dictionary itself: for
// every multi-word entry, the acronym over its significant words maps to
// the entry's normalized name, unless two entries collide on the same
// acronym, in which case the acronym is dropped as ambiguous.
func FromTrie(names *trie.Trie) *Normalizer {
	expansions := make(map[string]string)
	ambiguous := make(map[string]bool)

	names.Walk(func(e trie.Entry) {
		acr := acronym(e.Normalized)
		if len(acr) < 2 {
			return
		}
		if prev, ok := expansions[acr]; ok && prev != e.Normalized {
			ambiguous[acr] = true
			return
		}
		expansions[acr] = e.Normalized
	})

	for acr := range ambiguous {
		delete(expansions, acr)
	}
	return New(expansions)
}

// acronymStopwords are skipped when deriving an acronym from a name.
var acronymStopwords = map[string]bool{
	"of": true, "the": true, "and": true, "for": true, "at": true, "in": true,
}

func acronym(normalized string) string {
	var b strings.Builder
	for _, w := range strings.Fields(normalized) {
		if acronymStopwords[w] {
			continue
		}
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(r)
	}
	return b.String()
}

// Canonical returns the canonical form of a name: lowercase, Unicode
// folded, known acronyms expanded, punctuation stripped, whitespace
// collapsed. Canonical is idempotent.
func (n *Normalizer) Canonical(name string) string {
	folded := fold(strings.ToLower(name))

	var out []string
	for _, w := range strings.Fields(folded) {
		if exp, ok := n.abbreviations[w]; ok {
			out = append(out, exp)
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// fold lowercases, strips diacritics via NFKD decomposition, and replaces
// punctuation with spaces.
func fold(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from decomposition
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Key is the normalized cache key for one profiling request.
type Key struct {
	Canonical   string
	Type        types.InstitutionType
	Fingerprint string
}

// Key builds the cache key for a request: canonical name, type tag (empty
// when unknown), and the option fingerprint.
func (n *Normalizer) Key(req types.Request) Key {
	return Key{
		Canonical:   n.Canonical(req.Name),
		Type:        req.Type,
		Fingerprint: Fingerprint(req.Options),
	}
}

// String renders the key in its stable serialized form.
func (k Key) String() string {
	return k.Canonical + "|" + string(k.Type) + "|" + k.Fingerprint
}

// Fingerprint hashes the search-refinement options into a short stable
// tag. Options that do not change what is fetched (ForceRefresh,
// SkipExtraction) are excluded so they cannot fragment the cache.
func Fingerprint(opts types.RequestOptions) string {
	terms := append([]string(nil), opts.AdditionalKeywords...)
	sort.Strings(terms)
	excl := append([]string(nil), opts.ExcludeTerms...)
	sort.Strings(excl)

	payload := fmt.Sprintf("loc=%s;kw=%s;hint=%s;excl=%s;strategy=%s;max=%d",
		strings.ToLower(strings.TrimSpace(opts.Location)),
		strings.Join(terms, ","),
		strings.ToLower(strings.TrimSpace(opts.DomainHint)),
		strings.Join(excl, ","),
		opts.Strategy,
		opts.MaxPages,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:8])
}

// Similarity weights. Token overlap dominates because institution names
// share long common words; character distance and word order refine it.
const (
	weightLevenshtein = 0.3
	weightJaccard     = 0.4
	weightSequence    = 0.3
)

// Similarity scores two canonical strings in [0, 1]. The metric is
// symmetric and returns 1 for identical inputs.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	lev := levenshteinRatio(a, b)
	ta, tb := strings.Fields(a), strings.Fields(b)
	jac := jaccard(ta, tb)
	seq := sequenceRatio(ta, tb)

	return weightLevenshtein*lev + weightJaccard*jac + weightSequence*seq
}

func levenshteinRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(spell.EditDistance(a, b))/float64(longest)
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	set := make(map[string]uint8)
	for _, w := range a {
		set[w] |= 1
	}
	for _, w := range b {
		set[w] |= 2
	}
	var inter, union int
	for _, bits := range set {
		union++
		if bits == 3 {
			inter++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// sequenceRatio is 2*LCS / (len(a)+len(b)) over token sequences, the
// order-sensitive complement to Jaccard.
func sequenceRatio(a, b []string) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for _, wa := range a {
		for j, wb := range b {
			if wa == wb {
				curr[j+1] = prev[j] + 1
			} else if prev[j+1] >= curr[j] {
				curr[j+1] = prev[j+1]
			} else {
				curr[j+1] = curr[j]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}
