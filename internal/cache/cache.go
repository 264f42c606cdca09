// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache implements the file-backed similarity cache shared by the
// search, crawl, and extraction phases. Each entry is one JSON file named
// by a truncated SHA-256 of its key; lookups try the exact key first and
// fall back to the highest-scoring alive entry above the similarity
// threshold. Corrupt files are quarantined, never deleted.
//
// See docs/ARCHITECTURE.md § Caching.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/normalize"
)

// ErrMiss is returned when neither an exact nor a similar entry is alive.
var ErrMiss = errors.New("cache: miss")

// Provenance records how a cached value was produced or served.
type Provenance string

const (
	ProvenanceFresh        Provenance = "fresh"
	ProvenanceDirect       Provenance = "direct_hit"
	ProvenanceSimilarity   Provenance = "similarity_hit"
	ProvenanceStaleRefresh Provenance = "stale_refresh"
)

// entry is the on-disk format. CreatedAt is epoch seconds.
type entry struct {
	Key        string          `json:"key"`
	Value      json.RawMessage `json:"value"`
	CreatedAt  int64           `json:"created_at"`
	TTLSeconds int64           `json:"ttl_s"`
	Provenance Provenance      `json:"provenance"`
}

func (e entry) expiresAt() int64 { return e.CreatedAt + e.TTLSeconds }

// indexed is the in-memory view of one on-disk entry, enough to decide
// liveness and similarity without reading the file.
type indexed struct {
	file      string
	createdAt int64
	ttl       int64
}

// Stats is a point-in-time snapshot for the cache CLI.
type Stats struct {
	Entries        int     `json:"entries"`
	DirectHits     int64   `json:"direct_hits"`
	SimilarityHits int64   `json:"similarity_hits"`
	Misses         int64   `json:"misses"`
	HitRate        float64 `json:"hit_rate"`
}

// Store is one cache instance rooted at a directory. Many readers may
// call Get concurrently; Put and Sweep serialize against each other.
type Store struct {
	dir       string
	ttl       time.Duration
	threshold float64
	log       *zap.Logger
	now       func() time.Time

	group singleflight.Group

	mu             sync.RWMutex
	index          map[string]indexed
	directHits     int64
	similarityHits int64
	misses         int64
}

// Open creates or reopens a cache at dir. ttl applies to entries stored
// without an explicit one. threshold enables similarity fallback when
// positive; zero disables it. Corrupt files found while indexing are
// quarantined with a .bad suffix.
func Open(dir string, ttl time.Duration, threshold float64, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	s := &Store{
		dir:       dir,
		ttl:       ttl,
		threshold: threshold,
		log:       log,
		now:       time.Now,
		index:     make(map[string]indexed),
	}
	if err := s.reindex(); err != nil {
		return nil, err
	}
	return s, nil
}

// reindex scans the directory and rebuilds the in-memory index.
func (s *Store) reindex() error {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("scan cache dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[string]indexed, len(paths))
	for _, path := range paths {
		e, err := readEntry(path)
		if err != nil {
			s.quarantine(path, err)
			continue
		}
		s.index[e.Key] = indexed{file: path, createdAt: e.CreatedAt, ttl: e.TTLSeconds}
	}
	return nil
}

// Get returns the cached value for key. Exact matches are served as
// direct hits; otherwise the best alive entry whose key scores at or
// above the similarity threshold is served as a similarity hit.
func (s *Store) Get(key string) (json.RawMessage, Provenance, error) {
	nowUnix := s.now().Unix()

	s.mu.RLock()
	idx, ok := s.index[key]
	s.mu.RUnlock()

	if ok && idx.createdAt+idx.ttl > nowUnix {
		e, err := s.load(idx.file)
		if err == nil {
			s.count(&s.directHits)
			return e.Value, ProvenanceDirect, nil
		}
		s.log.Warn("cache entry unreadable", zap.String("file", idx.file), zap.Error(err))
	}

	if s.threshold > 0 {
		if value, ok := s.similar(key, nowUnix); ok {
			s.count(&s.similarityHits)
			return value, ProvenanceSimilarity, nil
		}
	}

	s.count(&s.misses)
	return nil, "", ErrMiss
}

// similar scans alive entries for the best fuzzy key match. Only the
// canonical-name part of the key is matched fuzzily; the type tag and
// option fingerprint after the first separator must be identical, so a
// similar name with different search options can never be served.
func (s *Store) similar(key string, nowUnix int64) (json.RawMessage, bool) {
	qName, qRest := splitKey(key)

	s.mu.RLock()
	bestKey, bestScore := "", 0.0
	var bestFile string
	for k, idx := range s.index {
		if idx.createdAt+idx.ttl <= nowUnix {
			continue
		}
		name, rest := splitKey(k)
		if rest != qRest {
			continue
		}
		if score := normalize.Similarity(qName, name); score >= s.threshold && score > bestScore {
			bestKey, bestScore, bestFile = k, score, idx.file
		}
	}
	s.mu.RUnlock()

	if bestKey == "" {
		return nil, false
	}
	e, err := s.load(bestFile)
	if err != nil {
		s.log.Warn("similar cache entry unreadable", zap.String("file", bestFile), zap.Error(err))
		return nil, false
	}
	s.log.Debug("similarity hit",
		zap.String("query_key", key),
		zap.String("matched_key", bestKey),
		zap.Float64("score", bestScore))
	return e.Value, true
}

// load reads one entry file, deduplicating concurrent reads of the same
// file through a singleflight group.
func (s *Store) load(path string) (entry, error) {
	v, err, _ := s.group.Do(path, func() (any, error) {
		return readEntry(path)
	})
	if err != nil {
		return entry{}, err
	}
	return v.(entry), nil
}

// Put stores value under key with the store's default TTL.
func (s *Store) Put(key string, value any) error {
	return s.PutTTL(key, value, s.ttl)
}

// PutTTL stores value under key with an explicit TTL, overwriting any
// previous entry.
func (s *Store) PutTTL(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}

	e := entry{
		Key:        key,
		Value:      raw,
		CreatedAt:  s.now().Unix(),
		TTLSeconds: int64(ttl.Seconds()),
		Provenance: ProvenanceFresh,
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	path := s.path(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	s.index[key] = indexed{file: path, createdAt: e.CreatedAt, ttl: e.TTLSeconds}
	s.group.Forget(path)
	return nil
}

// Sweep removes expired entries from disk and the index, returning the
// number removed.
func (s *Store) Sweep() (int, error) {
	nowUnix := s.now().Unix()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, idx := range s.index {
		if idx.createdAt+idx.ttl > nowUnix {
			continue
		}
		if err := os.Remove(idx.file); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove expired entry: %w", err)
		}
		delete(s.index, key)
		s.group.Forget(idx.file)
		removed++
	}
	return removed, nil
}

// Stats returns hit counters and the current entry count.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Entries:        len(s.index),
		DirectHits:     s.directHits,
		SimilarityHits: s.similarityHits,
		Misses:         s.misses,
	}
	total := st.DirectHits + st.SimilarityHits + st.Misses
	if total > 0 {
		st.HitRate = float64(st.DirectHits+st.SimilarityHits) / float64(total)
	}
	return st
}

// Len returns the number of indexed entries, expired included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

func (s *Store) count(c *int64) {
	s.mu.Lock()
	*c++
	s.mu.Unlock()
}

// path maps a key to its entry file: first 16 hex characters of the
// key's SHA-256.
func (s *Store) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])[:16]+".json")
}

// quarantine renames an unreadable entry aside for inspection. Callers
// hold the write lock.
func (s *Store) quarantine(path string, cause error) {
	bad := strings.TrimSuffix(path, ".json") + ".bad"
	if err := os.Rename(path, bad); err != nil {
		s.log.Warn("quarantine failed", zap.String("file", path), zap.Error(err))
		return
	}
	s.log.Warn("quarantined corrupt cache entry",
		zap.String("file", bad), zap.Error(cause))
}

// splitKey separates the canonical name from the rest of a serialized
// key. Keys without a separator (crawl URLs) match on the whole string.
func splitKey(key string) (name, rest string) {
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return key[:i], key[i:]
	}
	return key, ""
}

func readEntry(path string) (entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if e.Key == "" {
		return entry{}, fmt.Errorf("decode %s: missing key", filepath.Base(path))
	}
	return e, nil
}
