// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ErrorKind labels a phase-level failure. Only SchemaMismatch and Canceled
// surface as top-level errors; the rest mark the result degraded.
type ErrorKind string

const (
	ErrNoSuggestion       ErrorKind = "no_suggestion"
	ErrCacheMiss          ErrorKind = "cache_miss"
	ErrSearchUnavailable  ErrorKind = "search_provider_unavailable"
	ErrCrawlEmpty         ErrorKind = "crawl_empty"
	ErrExtractFailed      ErrorKind = "extract_failed"
	ErrPhaseTimeout       ErrorKind = "phase_timeout"
	ErrSchemaMismatch     ErrorKind = "schema_mismatch"
	ErrCacheCorrupt       ErrorKind = "cache_corrupt"
	ErrCanceled           ErrorKind = "canceled"
)

// SocialLink is an external link classified to a known platform.
type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// QualityReport is the output of the quality scorer.
type QualityReport struct {
	Score  float64 `json:"score" yaml:"score"`
	Rating string  `json:"rating" yaml:"rating"`

	// Base is the weighted field-presence component (0-75); Bonus is the
	// additive component (0-25).
	Base  float64 `json:"base" yaml:"base"`
	Bonus float64 `json:"bonus" yaml:"bonus"`

	// ClassCompletion maps each priority class to its present/eligible rate.
	ClassCompletion map[string]float64 `json:"class_completion,omitempty" yaml:"class_completion,omitempty"`
}

// PhaseTrace records the benchmark view of one phase for the final result.
type PhaseTrace struct {
	Phase        string        `json:"phase" yaml:"phase"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	CostUSD      float64       `json:"cost_usd" yaml:"cost_usd"`
	APICalls     int           `json:"api_calls" yaml:"api_calls"`
	InputTokens  int           `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int           `json:"output_tokens" yaml:"output_tokens"`
	CacheHit     string        `json:"cache_hit,omitempty" yaml:"cache_hit,omitempty"`
	Success      bool          `json:"success" yaml:"success"`
	ErrorKind    ErrorKind     `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// Result is the final output of a profiling request: the extracted record,
// crawl-derived media, the quality report, and the benchmark trace.
//
// Fields holds the extracted institution record keyed by schema field name;
// absent fields are omitted, never null. The schema package owns the key
// set and value shapes.
type Result struct {
	Name string          `json:"name" yaml:"name"`
	Type InstitutionType `json:"type" yaml:"type"`

	Fields map[string]any `json:"fields" yaml:"fields"`

	Logos          []ScoredImage `json:"logos,omitempty" yaml:"logos,omitempty"`
	Images         []ScoredImage `json:"images,omitempty" yaml:"images,omitempty"`
	FacilityImages []ScoredImage `json:"facility_images,omitempty" yaml:"facility_images,omitempty"`
	SocialLinks    []SocialLink  `json:"social_links,omitempty" yaml:"social_links,omitempty"`
	Documents      []string      `json:"documents,omitempty" yaml:"documents,omitempty"`

	CrawlSummary CrawlSummary  `json:"crawl_summary" yaml:"crawl_summary"`
	Quality      QualityReport `json:"quality" yaml:"quality"`
	Trace        []PhaseTrace  `json:"trace,omitempty" yaml:"trace,omitempty"`

	// Degraded is set when one or more phases reported a non-fatal failure;
	// ErrorKinds lists them in the order they occurred.
	Degraded   bool        `json:"degraded" yaml:"degraded"`
	ErrorKinds []ErrorKind `json:"error_kinds,omitempty" yaml:"error_kinds,omitempty"`
}
