// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package benchmark records per-phase cost, latency, token usage, and
// cache provenance for every profiling request. Spans are opened around
// each phase and flushed to an append-only session journal on close; an
// aggregate snapshot is maintained across sessions. The archive command
// loads journals into sqlite for reporting.
//
// See docs/ARCHITECTURE.md § Benchmarking.
package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Category labels what a span measured.
type Category string

const (
	CategorySearch   Category = "search"
	CategoryCrawl    Category = "crawl"
	CategoryExtract  Category = "extract"
	CategoryPipeline Category = "pipeline"
)

// Metric names accepted by Span.Record.
const (
	MetricCostUSD         = "cost_usd"
	MetricAPICalls        = "api_calls"
	MetricInputTokens     = "input_tokens"
	MetricOutputTokens    = "output_tokens"
	MetricCompletenessPct = "completeness_pct"
)

// Tag names accepted by Span.Tag.
const (
	TagCacheHitKind    = "cache_hit_kind"
	TagInstitutionType = "institution_type"
)

const aggregateFile = "aggregate.json"

// Sample is one closed span as written to the session journal.
type Sample struct {
	SessionID string   `json:"session_id"`
	SpanID    string   `json:"span_id"`
	Category  Category `json:"category"`

	StartedAt time.Time `json:"started_at"`
	ClosedAt  time.Time `json:"closed_at"`
	PhaseMS   int64     `json:"phase_ms"`

	CostUSD      float64 `json:"cost_usd"`
	APICalls     int     `json:"api_calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`

	CacheHitKind    string  `json:"cache_hit_kind,omitempty"`
	InstitutionType string  `json:"institution_type,omitempty"`
	Success         bool    `json:"success"`
	CompletenessPct float64 `json:"completeness_pct"`
	ErrorKind       string  `json:"error_kind,omitempty"`
}

// Span is an open measurement handle. Not safe for concurrent use; each
// phase owns its span.
type Span struct {
	id       string
	category Category
	started  time.Time

	metrics map[string]float64
	tags    map[string]string
}

// Record accumulates a numeric metric on the span.
func (s *Span) Record(metric string, v float64) {
	s.metrics[metric] += v
}

// Tag sets a string attribute on the span.
func (s *Span) Tag(key, value string) {
	s.tags[key] = value
}

// CategoryAggregate summarizes closed spans of one category.
type CategoryAggregate struct {
	Count     int            `json:"count"`
	Succeeded int            `json:"succeeded"`
	TotalMS   int64          `json:"total_ms"`
	CostUSD   float64        `json:"cost_usd"`
	CacheHits map[string]int `json:"cache_hits,omitempty"`
}

// TypeAggregate tracks pipeline success per institution type.
type TypeAggregate struct {
	Count     int `json:"count"`
	Succeeded int `json:"succeeded"`
}

// Aggregates is the cross-session snapshot persisted to aggregate.json.
type Aggregates struct {
	Samples      int     `json:"samples"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	APICalls     int     `json:"api_calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`

	ByCategory map[Category]CategoryAggregate `json:"by_category,omitempty"`
	ByType     map[string]TypeAggregate       `json:"by_type,omitempty"`
}

// Collector appends samples to the session journal and maintains the
// aggregate snapshot. Safe for concurrent use.
type Collector struct {
	dir       string
	sessionID string
	log       *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	journal *os.File
	agg     Aggregates
}

// New opens a collector: a fresh session journal named by start
// timestamp, and the aggregate snapshot carried over from prior sessions.
func New(cfg types.BenchmarkConfig, log *zap.Logger) (*Collector, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating benchmark directory: %w", err)
	}

	now := time.Now().UTC()
	sessionID := now.Format("2006-01-02T15-04-05Z")
	journalPath := filepath.Join(cfg.Dir, "session_"+sessionID+".jsonl")
	journal, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening session journal: %w", err)
	}

	c := &Collector{
		dir:       cfg.Dir,
		sessionID: sessionID,
		log:       log,
		now:       time.Now,
		journal:   journal,
		agg: Aggregates{
			ByCategory: make(map[Category]CategoryAggregate),
			ByType:     make(map[string]TypeAggregate),
		},
	}
	c.loadAggregates()
	return c, nil
}

// SessionID returns the journal session identifier.
func (c *Collector) SessionID() string { return c.sessionID }

// OpenSpan starts a measurement for one phase.
func (c *Collector) OpenSpan(category Category) *Span {
	return &Span{
		id:       uuid.NewString(),
		category: category,
		started:  c.now(),
		metrics:  make(map[string]float64),
		tags:     make(map[string]string),
	}
}

// CloseSpan finalizes the span, appends it to the journal, and folds it
// into the aggregates. The flushed sample is returned for the result
// trace.
func (c *Collector) CloseSpan(span *Span, success bool, errKind types.ErrorKind) Sample {
	closed := c.now()
	sample := Sample{
		SessionID:       c.sessionID,
		SpanID:          span.id,
		Category:        span.category,
		StartedAt:       span.started,
		ClosedAt:        closed,
		PhaseMS:         closed.Sub(span.started).Milliseconds(),
		CostUSD:         span.metrics[MetricCostUSD],
		APICalls:        int(span.metrics[MetricAPICalls]),
		InputTokens:     int(span.metrics[MetricInputTokens]),
		OutputTokens:    int(span.metrics[MetricOutputTokens]),
		CompletenessPct: span.metrics[MetricCompletenessPct],
		CacheHitKind:    span.tags[TagCacheHitKind],
		InstitutionType: span.tags[TagInstitutionType],
		Success:         success,
		ErrorKind:       string(errKind),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := json.Marshal(sample)
	if err == nil {
		if _, err = c.journal.Write(append(line, '\n')); err == nil {
			err = c.journal.Sync()
		}
	}
	if err != nil {
		c.log.Warn("benchmark journal write failed", zap.Error(err))
	}

	c.fold(sample)
	c.flushAggregates()
	return sample
}

// Aggregates returns a copy of the current snapshot.
func (c *Collector) Aggregates() Aggregates {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.agg
	out.ByCategory = make(map[Category]CategoryAggregate, len(c.agg.ByCategory))
	for k, v := range c.agg.ByCategory {
		hits := make(map[string]int, len(v.CacheHits))
		for hk, hv := range v.CacheHits {
			hits[hk] = hv
		}
		v.CacheHits = hits
		out.ByCategory[k] = v
	}
	out.ByType = make(map[string]TypeAggregate, len(c.agg.ByType))
	for k, v := range c.agg.ByType {
		out.ByType[k] = v
	}
	return out
}

// Close flushes the aggregates and closes the journal.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushAggregates()
	return c.journal.Close()
}

// fold adds one sample to the in-memory aggregates. Caller holds mu.
func (c *Collector) fold(s Sample) {
	c.agg.Samples++
	c.agg.TotalCostUSD += s.CostUSD
	c.agg.APICalls += s.APICalls
	c.agg.InputTokens += s.InputTokens
	c.agg.OutputTokens += s.OutputTokens

	cat := c.agg.ByCategory[s.Category]
	cat.Count++
	if s.Success {
		cat.Succeeded++
	}
	cat.TotalMS += s.PhaseMS
	cat.CostUSD += s.CostUSD
	if s.CacheHitKind != "" {
		if cat.CacheHits == nil {
			cat.CacheHits = make(map[string]int)
		}
		cat.CacheHits[s.CacheHitKind]++
	}
	c.agg.ByCategory[s.Category] = cat

	if s.Category == CategoryPipeline && s.InstitutionType != "" {
		ty := c.agg.ByType[s.InstitutionType]
		ty.Count++
		if s.Success {
			ty.Succeeded++
		}
		c.agg.ByType[s.InstitutionType] = ty
	}
}

func (c *Collector) loadAggregates() {
	raw, err := os.ReadFile(filepath.Join(c.dir, aggregateFile))
	if err != nil {
		return
	}
	var agg Aggregates
	if err := json.Unmarshal(raw, &agg); err != nil {
		c.log.Warn("aggregate snapshot unreadable, starting fresh", zap.Error(err))
		return
	}
	if agg.ByCategory == nil {
		agg.ByCategory = make(map[Category]CategoryAggregate)
	}
	if agg.ByType == nil {
		agg.ByType = make(map[string]TypeAggregate)
	}
	c.agg = agg
}

// flushAggregates writes the snapshot. Caller holds mu.
func (c *Collector) flushAggregates() {
	raw, err := json.MarshalIndent(c.agg, "", "  ")
	if err != nil {
		return
	}
	path := filepath.Join(c.dir, aggregateFile)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		c.log.Warn("aggregate snapshot write failed", zap.Error(err))
	}
}
