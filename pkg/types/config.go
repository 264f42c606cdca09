package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "institution-profiler/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the search phase.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey and CX authenticate against the Google Custom Search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	CX     string `json:"cx,omitempty" yaml:"cx,omitempty"`

	// MaxLinks is the number of prioritized links returned (default 15).
	MaxLinks int `json:"max_links" yaml:"max_links"`

	// NumResults is the number of raw results requested from the provider
	// (default 10, the provider maximum per call).
	NumResults int `json:"num_results" yaml:"num_results"`

	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Country  string `json:"country,omitempty" yaml:"country,omitempty"`

	// SafeSearch enables the provider's safe-search filter.
	SafeSearch bool `json:"safe_search" yaml:"safe_search"`

	// PhaseTimeout bounds the whole search phase (default 10s).
	PhaseTimeout time.Duration `json:"phase_timeout" yaml:"phase_timeout"`
}

// CrawlConfig holds settings for the crawl phase.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// Concurrency bounds parallel URL fetches within one request (default 8).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// JSEnabled asks the crawler engine to execute page JavaScript.
	JSEnabled bool `json:"js_enabled" yaml:"js_enabled"`

	// MaxPages caps total pages per request across tiers (0 = tier budgets only).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// PerPageTextCap bounds the markdown taken from each page when building
	// the aggregated total text (default 2000 characters).
	PerPageTextCap int `json:"per_page_text_cap" yaml:"per_page_text_cap"`

	// PhaseTimeout bounds the whole crawl phase (default 60s).
	PhaseTimeout time.Duration `json:"phase_timeout" yaml:"phase_timeout"`
}

// ExtractConfig holds settings for the extraction phase.
type ExtractConfig struct {
	AIConfig `yaml:",inline"`

	// MaxTokens bounds the model response size (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature for the model call (default 0).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// PhaseTimeout bounds the whole extraction phase (default 30s).
	PhaseTimeout time.Duration `json:"phase_timeout" yaml:"phase_timeout"`
}

// CacheConfig holds per-cache-instance settings.
type CacheConfig struct {
	// Dir is the directory holding one JSON file per entry.
	Dir string `json:"dir" yaml:"dir"`

	// TTL is the entry lifetime (search and extract: 7 days; crawl: 1 day).
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// SimilarityThreshold accepts fuzzy matches at or above this blended
	// score. Zero disables similarity matching (exact lookups only).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// SweepInterval is how often expired entries are removed (default 1h).
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
}

// BenchmarkConfig holds settings for the benchmark collector.
type BenchmarkConfig struct {
	// Dir is the directory for session journals and the aggregate snapshot.
	Dir string `json:"dir" yaml:"dir"`

	// ArchivePath is the sqlite database the report command queries.
	// Empty disables archiving.
	ArchivePath string `json:"archive_path,omitempty" yaml:"archive_path,omitempty"`
}

// DictionaryConfig holds settings for institution dictionary ingestion.
type DictionaryConfig struct {
	// CSVPaths lists institution CSV files loaded at startup.
	CSVPaths []string `json:"csv_paths" yaml:"csv_paths"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	BaseDir    string           `json:"base_dir" yaml:"base_dir"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Crawl      CrawlConfig      `json:"crawl" yaml:"crawl"`
	Extract    ExtractConfig    `json:"extract" yaml:"extract"`
	Benchmark  BenchmarkConfig  `json:"benchmark" yaml:"benchmark"`
	Dictionary DictionaryConfig `json:"dictionary" yaml:"dictionary"`

	SearchCache  CacheConfig `json:"search_cache" yaml:"search_cache"`
	CrawlCache   CacheConfig `json:"crawl_cache" yaml:"crawl_cache"`
	ExtractCache CacheConfig `json:"extract_cache" yaml:"extract_cache"`
}
