// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search turns an institution request into a ranked, tiered list
// of candidate URLs plus a short description. Query construction infers
// the institution type when absent, enriches the query with type terms and
// request options, and the provider results are scored and bucketed for
// the crawler. Results are cached by normalized key.
//
// See docs/ARCHITECTURE.md § Search Phase.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/cache"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/normalize"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// ErrProviderUnavailable wraps any provider transport failure. The phase
// degrades to an empty link list; the pipeline continues.
var ErrProviderUnavailable = errors.New("search: provider unavailable")

// Backend is the search provider capability. Implementations return raw
// provider results; ranking and tiering happen in the phase.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchLink, error)
}

// Phase runs provider queries behind the search cache.
type Phase struct {
	backend Backend
	store   *cache.Store
	cfg     types.SearchConfig
	log     *zap.Logger
}

// NewPhase wires a backend, its cache, and configuration. store may be nil
// to disable caching (tests).
func NewPhase(backend Backend, store *cache.Store, cfg types.SearchConfig, log *zap.Logger) *Phase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Phase{backend: backend, store: store, cfg: cfg, log: log}
}

// PhaseTimeout returns the configured phase budget (zero means default).
func (p *Phase) PhaseTimeout() time.Duration { return p.cfg.PhaseTimeout }

// Run resolves the request into a SearchOutput. Cache hits short-circuit
// the provider call unless the request forces a refresh. A provider
// failure returns a degraded output and ErrProviderUnavailable.
func (p *Phase) Run(ctx context.Context, req types.Request, key normalize.Key) (types.SearchOutput, error) {
	instType := req.Type
	if instType == types.TypeUnknown {
		instType = InferType(req.Name)
	}
	query := BuildQuery(req.Name, instType, req.Options)

	if p.store != nil && !req.Options.ForceRefresh {
		if raw, prov, err := p.store.Get(key.String()); err == nil {
			var out types.SearchOutput
			if err := json.Unmarshal(raw, &out); err == nil {
				out.CacheHit = true
				p.log.Debug("search cache hit",
					zap.String("key", key.String()),
					zap.String("provenance", string(prov)))
				return out, nil
			}
		}
	}

	results, err := p.backend.Search(ctx, query, p.cfg)
	if err != nil {
		if ctx.Err() != nil {
			return types.SearchOutput{}, ctx.Err()
		}
		p.log.Warn("search provider failed",
			zap.String("backend", p.backend.Name()), zap.Error(err))
		return types.SearchOutput{Query: query, Type: instType},
			fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	links := Prioritize(results, instType, req.Options.DomainHint, p.maxLinks())
	out := types.SearchOutput{
		Query:       query,
		Links:       links,
		Description: describe(links),
		Type:        instType,
	}

	if p.store != nil {
		if err := p.store.Put(key.String(), out); err != nil {
			p.log.Warn("search cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

func (p *Phase) maxLinks() int {
	if p.cfg.MaxLinks > 0 {
		return p.cfg.MaxLinks
	}
	return 15
}

// describe joins the top snippets into the fallback description text the
// extractor uses when the crawl produces nothing.
func describe(links []types.SearchLink) string {
	var parts []string
	for _, l := range links {
		if s := strings.TrimSpace(l.Snippet); s != "" {
			parts = append(parts, s)
		}
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, "\n\n")
}
