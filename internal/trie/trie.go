// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trie implements the prefix index of institution names. Search is
// case-insensitive over the normalized form; terminal nodes keep the
// original casing, a frequency weight for ranking, and the institution
// type. The trie is built once at startup from dictionary ingestion and is
// immutable afterwards, so concurrent reads need no locking.
//
// See docs/ARCHITECTURE.md § Input Resolution.
package trie

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Entry is the metadata bundle stored at a terminal node.
type Entry struct {
	// Name is the institution name with its original casing.
	Name string

	// Normalized is the lookup form: lowercase, punctuation stripped,
	// whitespace collapsed.
	Normalized string

	// Frequency is a positive weight used to order suggestions.
	Frequency int

	// Type is the institution type, or TypeUnknown when the dictionary
	// did not carry one.
	Type types.InstitutionType
}

type node struct {
	children map[rune]*node
	entry    *Entry // non-nil at terminal nodes
}

// Trie is the prefix index. The zero value is not usable; call New.
type Trie struct {
	root  *node
	count int
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// Normalize returns the trie lookup form of a name: lowercase, punctuation
// replaced by spaces, whitespace collapsed. Normalize is idempotent.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Insert adds a name with its metadata. Insertion is idempotent on the
// normalized name: a repeat insert keeps the higher frequency, and keeps
// the earlier institution type unless the earlier entry had none and the
// new insert carries one.
func (t *Trie) Insert(name string, frequency int, instType types.InstitutionType) {
	normalized := Normalize(name)
	if normalized == "" {
		return
	}
	if frequency < 1 {
		frequency = 1
	}

	n := t.root
	for _, r := range normalized {
		child, ok := n.children[r]
		if !ok {
			if n.children == nil {
				n.children = make(map[rune]*node)
			}
			child = &node{}
			n.children[r] = child
		}
		n = child
	}

	if n.entry == nil {
		t.count++
		n.entry = &Entry{
			Name:       name,
			Normalized: normalized,
			Frequency:  frequency,
			Type:       instType,
		}
		return
	}

	if frequency > n.entry.Frequency {
		n.entry.Frequency = frequency
	}
	if n.entry.Type == types.TypeUnknown && instType != types.TypeUnknown {
		n.entry.Type = instType
	}
}

// Contains reports whether the normalized form of name is a terminal.
func (t *Trie) Contains(name string) bool {
	n := t.find(Normalize(name))
	return n != nil && n.entry != nil
}

// Get returns the entry for an exact normalized match.
func (t *Trie) Get(name string) (Entry, bool) {
	n := t.find(Normalize(name))
	if n == nil || n.entry == nil {
		return Entry{}, false
	}
	return *n.entry, true
}

// Suggest returns up to k entries whose normalized form starts with prefix,
// ordered by descending frequency, ties broken by ascending normalized
// name. Input is case-insensitive; output preserves original casing.
func (t *Trie) Suggest(prefix string, k int) []Entry {
	normalized := Normalize(prefix)
	if normalized == "" || k <= 0 {
		return nil
	}

	n := t.find(normalized)
	if n == nil {
		return nil
	}

	var entries []Entry
	collect(n, &entries)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Frequency != entries[j].Frequency {
			return entries[i].Frequency > entries[j].Frequency
		}
		return entries[i].Normalized < entries[j].Normalized
	})

	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// Walk calls fn for every terminal entry in the trie.
func (t *Trie) Walk(fn func(Entry)) {
	var entries []Entry
	collect(t.root, &entries)
	for _, e := range entries {
		fn(e)
	}
}

// Size returns the number of distinct normalized names stored.
func (t *Trie) Size() int { return t.count }

func (t *Trie) find(normalized string) *node {
	n := t.root
	for _, r := range normalized {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

func collect(n *node, out *[]Entry) {
	if n.entry != nil {
		*out = append(*out, *n.entry)
	}
	for _, child := range n.children {
		collect(child, out)
	}
}
