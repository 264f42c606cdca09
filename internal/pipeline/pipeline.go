// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the profiling phases: normalize the request
// into a cache key, search, crawl, extract, then score. Phases run
// strictly in order under independent timeouts; a phase failure degrades
// the result instead of aborting unless it is a schema mismatch or a
// cancellation. Every phase reports to the benchmark collector.
//
// See docs/ARCHITECTURE.md § Pipeline Orchestration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/benchmark"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/content"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/crawl"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/extract"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/normalize"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/quality"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/schema"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/search"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Default per-phase timeout budgets.
const (
	defaultSearchTimeout  = 10 * time.Second
	defaultCrawlTimeout   = 60 * time.Second
	defaultExtractTimeout = 30 * time.Second
)

// ErrEmptyName is returned for a request without an institution name.
var ErrEmptyName = errors.New("pipeline: empty institution name")

// Services bundles the phase handlers the orchestrator drives.
type Services struct {
	Normalizer *normalize.Normalizer
	Search     *search.Phase
	Crawl      *crawl.Phase
	Extract    *extract.Phase
	Bench      *benchmark.Collector
	Log        *zap.Logger
}

// Pipeline runs profiling requests.
type Pipeline struct {
	svc Services
	log *zap.Logger
}

// New builds a pipeline over the given services.
func New(svc Services) *Pipeline {
	log := svc.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{svc: svc, log: log}
}

// profilingContext carries the per-request state between phases. It owns
// all intermediate outputs until the final result is assembled.
type profilingContext struct {
	req types.Request
	key normalize.Key

	searchOut types.SearchOutput
	crawlOut  types.CrawlOutput
	prepared  content.Prepared
	extracted extract.Output

	trace      []types.PhaseTrace
	errorKinds []types.ErrorKind
	phasesOK   int
	phasesRun  int
}

// fail records a phase-level failure.
func (pc *profilingContext) fail(kind types.ErrorKind) {
	pc.errorKinds = append(pc.errorKinds, kind)
}

// Run executes the full pipeline for one request. Only cancellation and
// schema mismatches surface as errors; every other failure degrades the
// result.
func (p *Pipeline) Run(ctx context.Context, req types.Request) (types.Result, error) {
	if strings.TrimSpace(req.Name) == "" {
		return types.Result{}, ErrEmptyName
	}

	pc := &profilingContext{req: req, key: p.svc.Normalizer.Key(req)}
	pipelineSpan := p.openSpan(benchmark.CategoryPipeline)

	p.log.Info("profiling request",
		zap.String("name", req.Name),
		zap.String("key", pc.key.String()))

	if err := p.runSearch(ctx, pc); err != nil {
		p.closePipeline(pipelineSpan, pc, false, types.ErrCanceled)
		return types.Result{}, err
	}
	if err := p.runCrawl(ctx, pc); err != nil {
		p.closePipeline(pipelineSpan, pc, false, types.ErrCanceled)
		return types.Result{}, err
	}

	if !req.Options.SkipExtraction {
		if err := p.runExtract(ctx, pc); err != nil {
			kind := types.ErrCanceled
			if !errors.Is(err, context.Canceled) {
				kind = types.ErrSchemaMismatch
			}
			p.closePipeline(pipelineSpan, pc, false, kind)
			return types.Result{}, err
		}
	}

	result := p.assemble(pc)
	p.closePipeline(pipelineSpan, pc, !result.Degraded, firstKind(pc.errorKinds))
	result.Trace = append(result.Trace, pc.trace...)
	return result, nil
}

// runSearch executes the search phase. Provider failure degrades; only
// cancellation propagates.
func (p *Pipeline) runSearch(ctx context.Context, pc *profilingContext) error {
	span := p.openSpan(benchmark.CategorySearch)
	pc.phasesRun++

	phaseCtx, cancel := context.WithTimeout(ctx, timeoutOr(p.searchTimeout(), defaultSearchTimeout))
	defer cancel()

	out, err := p.svc.Search.Run(phaseCtx, pc.req, pc.key)
	pc.searchOut = out
	if span != nil {
		span.Record(benchmark.MetricAPICalls, 1)
		if out.CacheHit {
			span.Tag(benchmark.TagCacheHitKind, "direct_hit")
		}
	}

	switch {
	case err == nil:
		pc.phasesOK++
		p.closeSpan(span, pc, true, "")
		return nil
	case ctx.Err() != nil:
		p.closeSpan(span, pc, false, types.ErrCanceled)
		return ctx.Err()
	case phaseCtx.Err() != nil:
		pc.fail(types.ErrPhaseTimeout)
		p.closeSpan(span, pc, false, types.ErrPhaseTimeout)
		return nil
	default:
		pc.fail(types.ErrSearchUnavailable)
		p.closeSpan(span, pc, false, types.ErrSearchUnavailable)
		return nil
	}
}

// runCrawl executes the crawl phase over the search links. An empty crawl
// degrades; downstream phases fall back to search text.
func (p *Pipeline) runCrawl(ctx context.Context, pc *profilingContext) error {
	span := p.openSpan(benchmark.CategoryCrawl)
	pc.phasesRun++

	phaseCtx, cancel := context.WithTimeout(ctx, timeoutOr(p.crawlTimeout(), defaultCrawlTimeout))
	defer cancel()

	out, err := p.svc.Crawl.Run(phaseCtx, pc.req, pc.searchOut)
	pc.crawlOut = out
	if span != nil {
		span.Record(benchmark.MetricAPICalls, float64(out.Summary.PagesRequested))
	}

	switch {
	case err == nil:
		pc.phasesOK++
		p.closeSpan(span, pc, true, "")
		return nil
	case ctx.Err() != nil:
		p.closeSpan(span, pc, false, types.ErrCanceled)
		return ctx.Err()
	case phaseCtx.Err() != nil:
		pc.fail(types.ErrPhaseTimeout)
		p.closeSpan(span, pc, false, types.ErrPhaseTimeout)
		return nil
	default:
		pc.fail(types.ErrCrawlEmpty)
		p.closeSpan(span, pc, false, types.ErrCrawlEmpty)
		return nil
	}
}

// runExtract prepares the content payload and calls the model. Extraction
// failure degrades to a crawl-derived record; cancellation and schema
// mismatches propagate.
func (p *Pipeline) runExtract(ctx context.Context, pc *profilingContext) error {
	span := p.openSpan(benchmark.CategoryExtract)
	pc.phasesRun++

	pc.prepared = content.Prepare(content.Input{
		Artifacts:   pc.crawlOut.Artifacts,
		Description: pc.searchOut.Description,
		Snippet:     topSnippet(pc.searchOut),
	})

	phaseCtx, cancel := context.WithTimeout(ctx, timeoutOr(p.extractTimeout(), defaultExtractTimeout))
	defer cancel()

	out, err := p.svc.Extract.Run(phaseCtx, pc.key, pc.instType(), pc.prepared.Text, pc.req.Options.ForceRefresh)
	pc.extracted = out
	if span != nil {
		span.Record(benchmark.MetricAPICalls, float64(out.APICalls))
		span.Record(benchmark.MetricCostUSD, out.CostUSD)
		span.Record(benchmark.MetricInputTokens, float64(out.InputTokens))
		span.Record(benchmark.MetricOutputTokens, float64(out.OutputTokens))
		if out.CacheHit {
			span.Tag(benchmark.TagCacheHitKind, "direct_hit")
		}
	}

	switch {
	case err == nil:
		pc.phasesOK++
		p.closeSpan(span, pc, true, "")
		return nil
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		p.closeSpan(span, pc, false, types.ErrCanceled)
		return ctx.Err()
	case errors.Is(err, extract.ErrFailed):
		pc.fail(types.ErrExtractFailed)
		p.closeSpan(span, pc, false, types.ErrExtractFailed)
		return nil
	case phaseCtx.Err() != nil:
		pc.fail(types.ErrPhaseTimeout)
		p.closeSpan(span, pc, false, types.ErrPhaseTimeout)
		return nil
	default:
		p.closeSpan(span, pc, false, types.ErrSchemaMismatch)
		return fmt.Errorf("extraction: %w", err)
	}
}

// instType picks the most specific type known so far: explicit request
// type, then the search phase's inference.
func (pc *profilingContext) instType() types.InstitutionType {
	if pc.req.Type.Valid() {
		return pc.req.Type
	}
	if pc.searchOut.Type.Valid() {
		return pc.searchOut.Type
	}
	return types.TypeUnknown
}

// assemble merges the phase outputs into the final result.
func (p *Pipeline) assemble(pc *profilingContext) types.Result {
	record := pc.extracted.Record
	if len(record) == 0 {
		record = fallbackRecord(pc)
	}

	media := extract.MergeMedia(pc.crawlOut.Artifacts)
	instType := resultType(pc, record)

	report := quality.Score(record, instType, quality.Bonus{
		Logos:           len(media.Logos),
		Images:          len(media.Images),
		FacilityImages:  len(media.FacilityImages),
		CampusImages:    campusCount(media.Images),
		SocialLinks:     len(media.SocialLinks),
		Documents:       len(media.Documents),
		Sources:         countSources(pc),
		Crawl:           pc.crawlOut.Summary,
		PhasesSucceeded: pc.phasesOK,
		PhasesTotal:     pc.phasesRun,
	})

	return types.Result{
		Name:           pc.req.Name,
		Type:           instType,
		Fields:         record.ToJSONMap(),
		Logos:          media.Logos,
		Images:         media.Images,
		FacilityImages: media.FacilityImages,
		SocialLinks:    media.SocialLinks,
		Documents:      media.Documents,
		CrawlSummary:   pc.crawlOut.Summary,
		Quality:        report,
		Degraded:       len(pc.errorKinds) > 0,
		ErrorKinds:     pc.errorKinds,
	}
}

// fallbackRecord builds a minimal record from search and crawl output when
// extraction produced nothing.
func fallbackRecord(pc *profilingContext) schema.Record {
	rec := make(schema.Record)
	rec["name"] = schema.Text(pc.req.Name)
	if t := pc.instType(); t.Valid() {
		rec["type"] = schema.Text(string(t))
	}
	if pc.searchOut.Description != "" {
		rec["description"] = schema.Text(pc.searchOut.Description)
	}
	if len(pc.searchOut.Links) > 0 {
		rec["website"] = schema.Text(pc.searchOut.Links[0].URL)
	}
	for _, a := range pc.crawlOut.Artifacts {
		if a.Title != "" {
			rec["official_name"] = schema.Text(a.Title)
			break
		}
	}
	return rec
}

// resultType prefers the extracted record's own type claim, then the
// pipeline's working type.
func resultType(pc *profilingContext, rec schema.Record) types.InstitutionType {
	if v, ok := rec["type"]; ok {
		if t := types.InstitutionType(strings.ToLower(strings.TrimSpace(v.Text))); t.Valid() {
			return t
		}
	}
	if t := pc.instType(); t.Valid() {
		return t
	}
	return types.TypeGeneral
}

// countSources counts the distinct content sources that contributed:
// crawled pages, the search description, and structured data blocks.
func countSources(pc *profilingContext) int {
	n := 0
	if len(pc.crawlOut.Artifacts) > 0 {
		n++
	}
	if strings.TrimSpace(pc.searchOut.Description) != "" {
		n++
	}
	for _, a := range pc.crawlOut.Artifacts {
		if len(a.StructuredData) > 0 {
			n++
			break
		}
	}
	return n
}

// campusCount counts gallery images that look like campus photography.
func campusCount(images []types.ScoredImage) int {
	n := 0
	for _, img := range images {
		text := strings.ToLower(img.Alt + " " + img.SurroundingText)
		if strings.Contains(text, "campus") {
			n++
		}
	}
	return n
}

func topSnippet(out types.SearchOutput) string {
	if len(out.Links) == 0 {
		return ""
	}
	return out.Links[0].Snippet
}

// Benchmark span helpers. The collector is optional; a nil collector
// still produces the result trace with zero-valued spans omitted.

func (p *Pipeline) openSpan(cat benchmark.Category) *benchmark.Span {
	if p.svc.Bench == nil {
		return nil
	}
	return p.svc.Bench.OpenSpan(cat)
}

func (p *Pipeline) closeSpan(span *benchmark.Span, pc *profilingContext, success bool, kind types.ErrorKind) {
	if span == nil {
		return
	}
	sample := p.svc.Bench.CloseSpan(span, success, kind)
	pc.trace = append(pc.trace, traceOf(sample, success, kind))
}

func (p *Pipeline) closePipeline(span *benchmark.Span, pc *profilingContext, success bool, kind types.ErrorKind) {
	if span == nil {
		return
	}
	span.Tag(benchmark.TagInstitutionType, string(pc.instType()))
	sample := p.svc.Bench.CloseSpan(span, success, kind)
	pc.trace = append([]types.PhaseTrace{traceOf(sample, success, kind)}, pc.trace...)
}

func traceOf(s benchmark.Sample, success bool, kind types.ErrorKind) types.PhaseTrace {
	return types.PhaseTrace{
		Phase:        string(s.Category),
		Duration:     time.Duration(s.PhaseMS) * time.Millisecond,
		CostUSD:      s.CostUSD,
		APICalls:     s.APICalls,
		InputTokens:  s.InputTokens,
		OutputTokens: s.OutputTokens,
		CacheHit:     s.CacheHitKind,
		Success:      success,
		ErrorKind:    kind,
	}
}

func firstKind(kinds []types.ErrorKind) types.ErrorKind {
	if len(kinds) == 0 {
		return ""
	}
	return kinds[0]
}

func timeoutOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func (p *Pipeline) searchTimeout() time.Duration  { return p.svc.Search.PhaseTimeout() }
func (p *Pipeline) crawlTimeout() time.Duration   { return p.svc.Crawl.PhaseTimeout() }
func (p *Pipeline) extractTimeout() time.Duration { return p.svc.Extract.PhaseTimeout() }
