// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl fetches prioritized URLs into per-page artifacts, scores
// their media, and aggregates bounded text for extraction. URLs are
// planned per tier under a strategy-dependent budget, fetched in parallel
// under a concurrency bound, and recombined in priority order so the
// downstream merge stays deterministic.
//
// See docs/ARCHITECTURE.md § Crawl Phase.
package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/cache"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/content"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/httputil"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// ErrEmpty is returned when no URL produced an artifact. The phase is
// degraded but the pipeline continues on search text alone.
var ErrEmpty = errors.New("crawl: no pages fetched")

// FetchOptions carries the per-URL engine parameters.
type FetchOptions struct {
	JSEnabled bool
	Timeout   time.Duration
	Depth     int
}

// Engine is the crawler capability. Implementations return the full
// artifact bundle for one URL.
type Engine interface {
	Name() string
	Fetch(ctx context.Context, url string, opts FetchOptions) (types.CrawlArtifact, error)
}

// Phase runs the crawl over the search phase's links.
type Phase struct {
	engine Engine
	store  *cache.Store
	cfg    types.CrawlConfig
	log    *zap.Logger
}

// NewPhase wires an engine, the per-URL cache, and configuration. store
// may be nil to disable caching.
func NewPhase(engine Engine, store *cache.Store, cfg types.CrawlConfig, log *zap.Logger) *Phase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Phase{engine: engine, store: store, cfg: cfg, log: log}
}

// PhaseTimeout returns the configured phase budget (zero means default).
func (p *Phase) PhaseTimeout() time.Duration { return p.cfg.PhaseTimeout }

// target is one planned fetch, in final priority order.
type target struct {
	link  types.SearchLink
	depth int
}

// Run fetches the planned URLs and returns scored artifacts in priority
// order. Per-URL failures are isolated; ErrEmpty is returned only when
// nothing succeeded.
func (p *Phase) Run(ctx context.Context, req types.Request, search types.SearchOutput) (types.CrawlOutput, error) {
	targets := p.plan(search.Links, req.Options)
	if len(targets) == 0 {
		return types.CrawlOutput{}, ErrEmpty
	}

	results := make([]*types.ScoredArtifact, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())
	for i, tgt := range targets {
		i, tgt := i, tgt
		g.Go(func() error {
			artifact, hit, err := p.fetchOne(gctx, tgt, req.Options.ForceRefresh)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.log.Warn("fetch failed",
					zap.String("url", tgt.link.URL), zap.Error(err))
				return nil
			}
			results[i] = &types.ScoredArtifact{
				CrawlArtifact: artifact,
				Tier:          tgt.link.Tier,
				Media:         ScoreImages(artifact.Images, req.Name),
				CacheHit:      hit,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.CrawlOutput{}, err
	}

	out := types.CrawlOutput{Summary: types.CrawlSummary{PagesRequested: len(targets)}}
	cacheHits := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Artifacts = append(out.Artifacts, *r)
		out.Summary.PagesSucceeded++
		out.Summary.TotalBytes += r.SizeBytes
		if r.CacheHit {
			cacheHits++
		}
	}
	if out.Summary.PagesSucceeded == 0 {
		return types.CrawlOutput{Summary: out.Summary}, ErrEmpty
	}
	out.Summary.SuccessRate = float64(out.Summary.PagesSucceeded) / float64(out.Summary.PagesRequested)
	out.Summary.CacheHitRate = float64(cacheHits) / float64(out.Summary.PagesSucceeded)
	out.TotalText = p.totalText(out.Artifacts)
	return out, nil
}

// plan selects which links to fetch: deduplicated by canonical URL,
// bounded per tier by the strategy budget and globally by max_pages.
func (p *Phase) plan(links []types.SearchLink, opts types.RequestOptions) []target {
	budgets := Budgets(opts.Strategy)
	globalCap := opts.MaxPages
	if globalCap <= 0 {
		globalCap = p.cfg.MaxPages
	}

	perTier := make(map[types.Tier]int)
	seen := make(map[string]bool)
	var targets []target
	for _, link := range links {
		canonical := httputil.CanonicalURL(link.URL)
		if canonical == "" || seen[canonical] {
			continue
		}
		budget := budgets[link.Tier]
		if perTier[link.Tier] >= budget.MaxPages {
			continue
		}
		seen[canonical] = true
		perTier[link.Tier]++
		link.URL = canonical
		targets = append(targets, target{link: link, depth: budget.MaxDepth})
		if globalCap > 0 && len(targets) >= globalCap {
			break
		}
	}
	return targets
}

// fetchOne serves a single URL from the cache or the engine. Fresh
// artifacts are cached unless the context was cancelled mid-fetch.
func (p *Phase) fetchOne(ctx context.Context, tgt target, forceRefresh bool) (types.CrawlArtifact, bool, error) {
	if p.store != nil && !forceRefresh {
		if raw, _, err := p.store.Get(tgt.link.URL); err == nil {
			var artifact types.CrawlArtifact
			if err := json.Unmarshal(raw, &artifact); err == nil {
				return artifact, true, nil
			}
		}
	}

	artifact, err := p.engine.Fetch(ctx, tgt.link.URL, FetchOptions{
		JSEnabled: p.cfg.JSEnabled,
		Timeout:   p.fetchTimeout(),
		Depth:     tgt.depth,
	})
	if err != nil {
		return types.CrawlArtifact{}, false, err
	}
	if artifact.Status >= 400 {
		return types.CrawlArtifact{}, false, fmt.Errorf("fetch %s: HTTP %d", tgt.link.URL, artifact.Status)
	}

	if p.store != nil && ctx.Err() == nil {
		if err := p.store.Put(tgt.link.URL, artifact); err != nil {
			p.log.Warn("crawl cache write failed", zap.Error(err))
		}
	}
	return artifact, false, nil
}

// totalText joins each page's primary markdown, bounded per page, with
// source-attribution headers.
func (p *Phase) totalText(artifacts []types.ScoredArtifact) string {
	perPage := p.cfg.PerPageTextCap
	if perPage <= 0 {
		perPage = 2000
	}

	var b strings.Builder
	for i, a := range artifacts {
		text := strings.TrimSpace(a.Markdown.PrimaryContent)
		if text == "" {
			continue
		}
		text = content.Truncate(text, perPage)
		fmt.Fprintf(&b, "[page %d: %s]\n%s\n\n", i+1, a.URL, text)
	}
	return strings.TrimSpace(b.String())
}

func (p *Phase) concurrency() int {
	if p.cfg.Concurrency > 0 {
		return p.cfg.Concurrency
	}
	return 8
}

func (p *Phase) fetchTimeout() time.Duration {
	if p.cfg.PhaseTimeout > 0 {
		return p.cfg.PhaseTimeout / 2
	}
	return 30 * time.Second
}
