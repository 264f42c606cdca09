// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Tier is the priority bucket assigned to a candidate URL. It controls the
// crawl depth and page budget spent on that URL.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// SearchLink is one ranked candidate URL produced by the search phase.
type SearchLink struct {
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title" yaml:"title"`
	Snippet string `json:"snippet" yaml:"snippet"`
	Domain  string `json:"domain" yaml:"domain"`

	// Priority is the link-prioritization score; Tier is the bucket derived
	// from it (high >= 100, medium >= 50, else low).
	Priority int  `json:"priority" yaml:"priority"`
	Tier     Tier `json:"tier" yaml:"tier"`
}

// SearchOutput is the artifact emitted by the search phase.
type SearchOutput struct {
	Query       string          `json:"query" yaml:"query"`
	Links       []SearchLink    `json:"links" yaml:"links"`
	Description string          `json:"description" yaml:"description"`
	Type        InstitutionType `json:"type" yaml:"type"`
	CacheHit    bool            `json:"cache_hit" yaml:"cache_hit"`
}

// ImageRef is an image as reported by the crawler engine, before scoring.
type ImageRef struct {
	Src    string `json:"src" yaml:"src"`
	Alt    string `json:"alt" yaml:"alt"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`

	// SurroundingText is a snippet of text near the image in the DOM.
	SurroundingText string `json:"surrounding_text,omitempty" yaml:"surrounding_text,omitempty"`

	// DOMLocation tags where the image sits: "header", "near-title",
	// "main-content", "nav", "footer", or "" when unknown.
	DOMLocation string `json:"dom_location,omitempty" yaml:"dom_location,omitempty"`
}

// ScoredImage is an image with the media-scoring results attached.
// Relevance is an integer 0-6; LogoConfidence is in [0, 1]. An image with
// LogoConfidence >= 0.5 is a logo candidate; it may also carry a relevance
// score as an ordinary image.
type ScoredImage struct {
	ImageRef `yaml:",inline"`

	Relevance      int     `json:"relevance" yaml:"relevance"`
	LogoConfidence float64 `json:"logo_confidence" yaml:"logo_confidence"`
}

// MarkdownBundle holds the markdown renderings the crawler engine produces
// for one page. PrimaryContent is the variant downstream stages consume.
type MarkdownBundle struct {
	Raw            string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Fit            string `json:"fit,omitempty" yaml:"fit,omitempty"`
	PrimaryContent string `json:"primary_content,omitempty" yaml:"primary_content,omitempty"`
}

// CrawlArtifact is the per-URL bundle returned by the crawler engine.
type CrawlArtifact struct {
	URL    string `json:"url" yaml:"url"`
	Status int    `json:"status" yaml:"status"`

	RawHTML     string         `json:"raw_html,omitempty" yaml:"raw_html,omitempty"`
	CleanedHTML string         `json:"cleaned_html,omitempty" yaml:"cleaned_html,omitempty"`
	Markdown    MarkdownBundle `json:"markdown" yaml:"markdown"`

	// StructuredData holds compact JSON-LD blocks found on the page,
	// one raw JSON string per block.
	StructuredData []string `json:"structured_data,omitempty" yaml:"structured_data,omitempty"`

	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Images []ImageRef `json:"images,omitempty" yaml:"images,omitempty"`
	Videos []string   `json:"videos,omitempty" yaml:"videos,omitempty"`
	Audio  []string   `json:"audio,omitempty" yaml:"audio,omitempty"`

	InternalLinks []string `json:"internal_links,omitempty" yaml:"internal_links,omitempty"`
	ExternalLinks []string `json:"external_links,omitempty" yaml:"external_links,omitempty"`

	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
	SizeBytes int       `json:"size_bytes" yaml:"size_bytes"`
}

// ScoredArtifact pairs a crawl artifact with its scored media and the tier
// it was fetched under.
type ScoredArtifact struct {
	CrawlArtifact `yaml:",inline"`

	Tier     Tier          `json:"tier" yaml:"tier"`
	Media    []ScoredImage `json:"media,omitempty" yaml:"media,omitempty"`
	CacheHit bool          `json:"cache_hit" yaml:"cache_hit"`
}

// CrawlSummary aggregates per-request crawl statistics. The quality scorer
// consumes it for the data-source bonus.
type CrawlSummary struct {
	PagesRequested int     `json:"pages_requested" yaml:"pages_requested"`
	PagesSucceeded int     `json:"pages_succeeded" yaml:"pages_succeeded"`
	TotalBytes     int     `json:"total_bytes" yaml:"total_bytes"`
	CacheHitRate   float64 `json:"cache_hit_rate" yaml:"cache_hit_rate"`
	SuccessRate    float64 `json:"success_rate" yaml:"success_rate"`
}

// CrawlOutput is the artifact emitted by the crawl phase.
type CrawlOutput struct {
	Artifacts []ScoredArtifact `json:"artifacts" yaml:"artifacts"`

	// TotalText is the aggregated primary markdown of all pages, bounded
	// per page, in priority order.
	TotalText string `json:"total_text,omitempty" yaml:"total_text,omitempty"`

	Summary CrawlSummary `json:"summary" yaml:"summary"`
}
