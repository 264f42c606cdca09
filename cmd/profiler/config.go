// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/autocomplete"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/benchmark"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/cache"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/crawl"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/dictionary"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/extract"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/normalize"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/pipeline"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/search"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// loadPipelineConfig assembles the pipeline configuration from viper with
// working defaults. API keys fall back to the .secrets/ directory.
func loadPipelineConfig() types.PipelineConfig {
	v := viper.GetViper()
	v.SetDefault("base_dir", ".")
	v.SetDefault("search.max_links", 15)
	v.SetDefault("search.num_results", 10)
	v.SetDefault("search.timeout", "15s")
	v.SetDefault("search.phase_timeout", "10s")
	v.SetDefault("search.user_agent", "institution-profiler/0.1")
	v.SetDefault("search.safe_search", true)
	v.SetDefault("crawl.concurrency", 8)
	v.SetDefault("crawl.timeout", "20s")
	v.SetDefault("crawl.phase_timeout", "60s")
	v.SetDefault("crawl.per_page_text_cap", 2000)
	v.SetDefault("crawl.user_agent", "institution-profiler/0.1")
	v.SetDefault("extract.model", "claude-3-5-haiku-20241022")
	v.SetDefault("extract.max_tokens", 4096)
	v.SetDefault("extract.max_retries", 3)
	v.SetDefault("extract.phase_timeout", "30s")
	v.SetDefault("search_cache.ttl", "168h")
	v.SetDefault("search_cache.similarity_threshold", 0.85)
	v.SetDefault("crawl_cache.ttl", "24h")
	v.SetDefault("crawl_cache.similarity_threshold", 0.0)
	v.SetDefault("extract_cache.ttl", "168h")
	v.SetDefault("extract_cache.similarity_threshold", 0.85)

	baseDir := v.GetString("base_dir")
	cfg := types.PipelineConfig{
		BaseDir: baseDir,
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("search.timeout"),
				UserAgent: v.GetString("search.user_agent"),
			},
			APIKey:       secretDefault("google_api_key", v.GetString("search.api_key")),
			CX:           secretDefault("google_cx", v.GetString("search.cx")),
			MaxLinks:     v.GetInt("search.max_links"),
			NumResults:   v.GetInt("search.num_results"),
			Language:     v.GetString("search.language"),
			Country:      v.GetString("search.country"),
			SafeSearch:   v.GetBool("search.safe_search"),
			PhaseTimeout: v.GetDuration("search.phase_timeout"),
		},
		Crawl: types.CrawlConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("crawl.timeout"),
				UserAgent: v.GetString("crawl.user_agent"),
			},
			Concurrency:    v.GetInt("crawl.concurrency"),
			JSEnabled:      v.GetBool("crawl.js_enabled"),
			MaxPages:       v.GetInt("crawl.max_pages"),
			PerPageTextCap: v.GetInt("crawl.per_page_text_cap"),
			PhaseTimeout:   v.GetDuration("crawl.phase_timeout"),
		},
		Extract: types.ExtractConfig{
			AIConfig: types.AIConfig{
				Model:      v.GetString("extract.model"),
				APIKey:     secretDefault("claude_api_key", v.GetString("extract.api_key")),
				MaxRetries: v.GetInt("extract.max_retries"),
			},
			MaxTokens:    v.GetInt("extract.max_tokens"),
			Temperature:  v.GetFloat64("extract.temperature"),
			PhaseTimeout: v.GetDuration("extract.phase_timeout"),
		},
		Benchmark: types.BenchmarkConfig{
			Dir:         orDefault(v.GetString("benchmark.dir"), filepath.Join(baseDir, "benchmarks")),
			ArchivePath: orDefault(v.GetString("benchmark.archive_path"), filepath.Join(baseDir, "benchmarks", "archive.db")),
		},
		Dictionary: types.DictionaryConfig{
			CSVPaths: v.GetStringSlice("dictionary.csv_paths"),
		},
		SearchCache: types.CacheConfig{
			Dir:                 orDefault(v.GetString("search_cache.dir"), filepath.Join(baseDir, "cache", "search")),
			TTL:                 v.GetDuration("search_cache.ttl"),
			SimilarityThreshold: v.GetFloat64("search_cache.similarity_threshold"),
		},
		CrawlCache: types.CacheConfig{
			Dir:                 orDefault(v.GetString("crawl_cache.dir"), filepath.Join(baseDir, "cache", "crawl")),
			TTL:                 v.GetDuration("crawl_cache.ttl"),
			SimilarityThreshold: v.GetFloat64("crawl_cache.similarity_threshold"),
		},
		ExtractCache: types.CacheConfig{
			Dir:                 orDefault(v.GetString("extract_cache.dir"), filepath.Join(baseDir, "cache", "extract")),
			TTL:                 v.GetDuration("extract_cache.ttl"),
			SimilarityThreshold: v.GetFloat64("extract_cache.similarity_threshold"),
		},
	}
	return cfg
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// services bundles everything the commands share, with its teardown.
type services struct {
	cfg      types.PipelineConfig
	suggest  *autocomplete.Service
	pipeline *pipeline.Pipeline
	bench    *benchmark.Collector
	log      *zap.Logger

	closers []func() error
}

// Close releases all held resources in reverse order.
func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	if s.log != nil {
		s.log.Sync()
	}
}

// buildServices wires the full pipeline from the loaded configuration.
func buildServices() (*services, error) {
	cfg := loadPipelineConfig()

	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	searchCache, err := cache.Open(cfg.SearchCache.Dir, cfg.SearchCache.TTL, cfg.SearchCache.SimilarityThreshold, log)
	if err != nil {
		return nil, fmt.Errorf("opening search cache: %w", err)
	}
	crawlCache, err := cache.Open(cfg.CrawlCache.Dir, cfg.CrawlCache.TTL, cfg.CrawlCache.SimilarityThreshold, log)
	if err != nil {
		return nil, fmt.Errorf("opening crawl cache: %w", err)
	}
	extractCache, err := cache.Open(cfg.ExtractCache.Dir, cfg.ExtractCache.TTL, cfg.ExtractCache.SimilarityThreshold, log)
	if err != nil {
		return nil, fmt.Errorf("opening extract cache: %w", err)
	}

	names, corrector, err := dictionary.Load(cfg.Dictionary, log)
	if err != nil {
		return nil, fmt.Errorf("loading dictionary: %w", err)
	}

	bench, err := benchmark.New(cfg.Benchmark, log)
	if err != nil {
		return nil, fmt.Errorf("opening benchmark collector: %w", err)
	}

	var engine crawl.Engine
	var engineClose func() error
	if cfg.Crawl.JSEnabled {
		rod, err := crawl.NewRodEngine(true)
		if err != nil {
			return nil, fmt.Errorf("starting browser engine: %w", err)
		}
		engine = rod
		engineClose = rod.Close
	} else {
		engine = &crawl.HTTPEngine{
			Client:    &http.Client{Timeout: cfg.Crawl.Timeout},
			UserAgent: cfg.Crawl.UserAgent,
		}
	}

	pipe := pipeline.New(pipeline.Services{
		Normalizer: normalize.FromTrie(names),
		Search: search.NewPhase(&search.GoogleBackend{
			Client: &http.Client{Timeout: cfg.Search.Timeout},
			APIKey: cfg.Search.APIKey,
			CX:     cfg.Search.CX,
		}, searchCache, cfg.Search, log),
		Crawl: crawl.NewPhase(engine, crawlCache, cfg.Crawl, log),
		Extract: extract.NewPhase(&extract.ClaudeBackend{
			APIKey: cfg.Extract.APIKey,
			Client: &http.Client{Timeout: timeoutOr(cfg.Extract.PhaseTimeout, 30*time.Second)},
		}, extractCache, cfg.Extract, log),
		Bench: bench,
		Log:   log,
	})

	svc := &services{
		cfg:      cfg,
		suggest:  autocomplete.New(names, corrector),
		pipeline: pipe,
		bench:    bench,
		log:      log,
	}
	svc.closers = append(svc.closers, bench.Close)
	if engineClose != nil {
		svc.closers = append(svc.closers, engineClose)
	}
	return svc, nil
}

func timeoutOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
