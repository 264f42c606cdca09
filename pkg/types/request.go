// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the institution-profiler
// pipeline: requests, institution types, crawl artifacts, profile results,
// and per-stage configuration.
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// InstitutionType classifies an institution and selects type-appropriate
// schema fields, search enrichment terms, and crawl keywords.
type InstitutionType string

const (
	TypeUniversity InstitutionType = "university"
	TypeHospital   InstitutionType = "hospital"
	TypeBank       InstitutionType = "bank"
	TypeGeneral    InstitutionType = "general"

	// TypeUnknown marks a request whose type has not been inferred yet.
	TypeUnknown InstitutionType = ""
)

// Valid reports whether t is one of the four concrete institution types.
func (t InstitutionType) Valid() bool {
	switch t {
	case TypeUniversity, TypeHospital, TypeBank, TypeGeneral:
		return true
	}
	return false
}

// CrawlStrategy selects how tier budgets (depth, page counts) are allocated
// across priority tiers during the crawl phase.
type CrawlStrategy string

const (
	StrategyEqual         CrawlStrategy = "equal"
	StrategyPriorityBased CrawlStrategy = "priority_based"
	StrategyHighLinks     CrawlStrategy = "high_links"
	StrategyHighDepth     CrawlStrategy = "high_depth"
)

// RequestOptions carries the recognized search-refinement and pipeline
// options. All fields are optional; zero values mean "not set".
type RequestOptions struct {
	// Location is appended to the search query as a free-text constraint.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// AdditionalKeywords are appended verbatim to the search query.
	AdditionalKeywords []string `json:"additional_keywords,omitempty" yaml:"additional_keywords,omitempty"`

	// DomainHint is added as a site: operator and boosts matching links.
	DomainHint string `json:"domain_hint,omitempty" yaml:"domain_hint,omitempty"`

	// ExcludeTerms holds terms that become -term exclusions in the query.
	ExcludeTerms []string `json:"exclude_terms,omitempty" yaml:"exclude_terms,omitempty"`

	// ForceRefresh bypasses cache reads for this request. Writes still
	// populate the caches.
	ForceRefresh bool `json:"force_refresh,omitempty" yaml:"force_refresh,omitempty"`

	// SkipExtraction stops the pipeline after the crawl phase and returns
	// a partial result.
	SkipExtraction bool `json:"skip_extraction,omitempty" yaml:"skip_extraction,omitempty"`

	// Strategy overrides the crawl tier strategy (default priority_based).
	Strategy CrawlStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	// MaxPages caps the total number of pages crawled across all tiers.
	MaxPages int `json:"max_pages,omitempty" yaml:"max_pages,omitempty"`
}

// Request is the input to the profiling pipeline.
type Request struct {
	// Name is the free-text institution name. Required.
	Name string `json:"name" yaml:"name"`

	// Type overrides institution-type inference when set.
	Type InstitutionType `json:"type,omitempty" yaml:"type,omitempty"`

	// Options holds the recognized refinement options.
	Options RequestOptions `json:"options,omitempty" yaml:"options,omitempty"`
}
