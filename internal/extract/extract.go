// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns prepared page text into a structured institution
// record via the LLM capability, then merges in the crawl-derived media.
// Responses are parsed against the field schema; keys outside it are
// dropped, never stored. Extractions are cached by normalized key,
// content hash, schema version, and model.
//
// See docs/ARCHITECTURE.md § Extraction Phase.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/cache"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/normalize"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/schema"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// ErrFailed wraps LLM transport and parse failures. The pipeline degrades
// to a crawl-derived record.
var ErrFailed = errors.New("extract: model call failed")

// Completion is what the LLM capability returns for one call.
type Completion struct {
	Text         string  `json:"text"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// AIBackend is the LLM capability.
type AIBackend interface {
	Name() string
	Complete(ctx context.Context, system, user string, cfg types.ExtractConfig) (Completion, error)
}

// Output is the extraction result: the parsed record plus call usage.
type Output struct {
	Record  schema.Record `json:"-"`
	Dropped []string      `json:"dropped,omitempty"`

	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	APICalls     int     `json:"api_calls"`
	CacheHit     bool    `json:"cache_hit"`
}

// cachedOutput is the on-disk shape: the record goes through its JSON map
// form since schema.Value does not marshal directly.
type cachedOutput struct {
	Fields  map[string]any `json:"fields"`
	Dropped []string       `json:"dropped,omitempty"`
}

// Phase runs extraction behind its cache.
type Phase struct {
	backend AIBackend
	store   *cache.Store
	cfg     types.ExtractConfig
	log     *zap.Logger
}

// NewPhase wires the backend, cache, and configuration. store may be nil
// to disable caching.
func NewPhase(backend AIBackend, store *cache.Store, cfg types.ExtractConfig, log *zap.Logger) *Phase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Phase{backend: backend, store: store, cfg: cfg, log: log}
}

// PhaseTimeout returns the configured phase budget (zero means default).
func (p *Phase) PhaseTimeout() time.Duration { return p.cfg.PhaseTimeout }

// Run extracts a record from the prepared content. A model failure
// returns ErrFailed with a zero output; the caller builds the degraded
// record from crawl artifacts.
func (p *Phase) Run(ctx context.Context, key normalize.Key, instType types.InstitutionType, prepared string, forceRefresh bool) (Output, error) {
	if prepared == "" {
		return Output{}, fmt.Errorf("%w: no content to extract from", ErrFailed)
	}

	cacheKey := p.cacheKey(key, prepared)
	if p.store != nil && !forceRefresh {
		if raw, _, err := p.store.Get(cacheKey); err == nil {
			var cached cachedOutput
			if err := json.Unmarshal(raw, &cached); err == nil {
				record, dropped, err := schema.ParseRecord(cached.Fields)
				if err == nil {
					return Output{Record: record, Dropped: append(cached.Dropped, dropped...), CacheHit: true}, nil
				}
			}
		}
	}

	completion, err := p.backend.Complete(ctx, systemPrompt(instType), userPrompt(prepared), p.cfg)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, ctx.Err()
		}
		return Output{APICalls: 1}, fmt.Errorf("%w: %v", ErrFailed, err)
	}

	record, dropped, err := ParseResponse(completion.Text)
	if err != nil {
		p.log.Warn("model response unparseable", zap.Error(err))
		return Output{
			APICalls:     1,
			InputTokens:  completion.InputTokens,
			OutputTokens: completion.OutputTokens,
			CostUSD:      completion.CostUSD,
		}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if len(dropped) > 0 {
		p.log.Debug("dropped non-schema keys", zap.Strings("keys", dropped))
	}

	out := Output{
		Record:       record,
		Dropped:      dropped,
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
		CostUSD:      completion.CostUSD,
		APICalls:     1,
	}

	if p.store != nil && ctx.Err() == nil {
		entry := cachedOutput{Fields: record.ToJSONMap(), Dropped: dropped}
		if err := p.store.Put(cacheKey, entry); err != nil {
			p.log.Warn("extract cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// cacheKey combines everything that changes the extraction result.
func (p *Phase) cacheKey(key normalize.Key, prepared string) string {
	sum := sha256.Sum256([]byte(prepared))
	return fmt.Sprintf("%s|%s|%s|%s",
		key.String(), hex.EncodeToString(sum[:])[:16], schema.Version, p.cfg.Model)
}
