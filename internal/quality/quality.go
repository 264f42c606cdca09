// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality computes the 0-100 profile quality score: a weighted
// field-presence base over the schema's priority classes, plus bonus
// points for media, content richness, data-source quality, and
// processing success. The scorer is pure; callers assemble the bonus
// inputs from the pipeline artifacts.
//
// See docs/ARCHITECTURE.md § Quality Scoring.
package quality

import (
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/schema"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// baseScale converts the weighted presence fraction to its 0-75 share of
// the total score; bonuses supply the remaining 25.
const baseScale = 75

// Bonus caps per group.
const (
	visualCap     = 8
	richnessCap   = 7
	dataSourceCap = 10
	processingCap = 5
)

// Bonus carries everything the bonus tables consume. Counts come from the
// merged media; Crawl from the crawl summary; Sources is the number of
// distinct content sources that contributed (search description, crawled
// pages, structured data blocks).
type Bonus struct {
	Logos          int
	Images         int
	FacilityImages int
	CampusImages   int

	SocialLinks int
	Documents   int
	Sources     int

	Crawl types.CrawlSummary

	// PhasesSucceeded counts pipeline phases that completed without a
	// recorded error, out of PhasesTotal.
	PhasesSucceeded int
	PhasesTotal     int
}

// Score computes the quality report for an extracted record. Specialized
// fields count only for their institution type; for general or unknown
// institutions the specialized class drops out entirely.
func Score(rec schema.Record, instType types.InstitutionType, bonus Bonus) types.QualityReport {
	base, completion := baseScore(rec, instType)

	bonusPts := visualBonus(bonus) + richnessBonus(bonus) + dataSourceBonus(bonus) + processingBonus(bonus)
	score := clamp(base*baseScale+bonusPts, 0, 100)

	return types.QualityReport{
		Score:           score,
		Rating:          Rating(score),
		Base:            base * baseScale,
		Bonus:           bonusPts,
		ClassCompletion: completion,
	}
}

// baseScore returns the weighted presence fraction in [0, 1] and the
// per-class completion rates. Classes with no eligible fields contribute
// nothing and are omitted from the map.
func baseScore(rec schema.Record, instType types.InstitutionType) (float64, map[string]float64) {
	eligible := make(map[schema.Class]int)
	present := make(map[schema.Class]int)

	for _, f := range schema.Fields() {
		if !f.AppliesTo(instType) {
			continue
		}
		eligible[f.Class]++
		if v, ok := rec[f.Name]; ok && v.Present() {
			present[f.Class]++
		}
	}

	var base float64
	completion := make(map[string]float64)
	for class, weight := range schema.Weights {
		n := eligible[class]
		if n == 0 {
			continue
		}
		rate := float64(present[class]) / float64(n)
		completion[string(class)] = rate
		base += weight * rate
	}
	return base, completion
}

func visualBonus(b Bonus) float64 {
	var pts float64
	if b.Logos > 0 {
		pts += 3
	}
	if b.Images > 0 {
		pts += 2
	}
	if b.FacilityImages > 0 {
		pts += 2
	}
	if b.CampusImages > 0 {
		pts += 1
	}
	return min(pts, visualCap)
}

func richnessBonus(b Bonus) float64 {
	var pts float64
	if b.SocialLinks > 0 {
		pts += 2
	}
	if b.Documents > 0 {
		pts += 2
	}
	if b.Sources >= 3 {
		pts += 3
	}
	return min(pts, richnessCap)
}

func dataSourceBonus(b Bonus) float64 {
	var pts float64
	if b.Crawl.PagesSucceeded > 0 {
		if b.Crawl.SuccessRate >= 0.8 {
			pts += 3
		}
		if b.Crawl.TotalBytes > 1<<20 {
			pts += 2
		}
		if b.Crawl.CacheHitRate < 0.5 {
			pts += 2
		}
	}
	if b.Sources >= 2 {
		pts += 3
	}
	return min(pts, dataSourceCap)
}

// processingBonus rewards a clean run: every phase succeeding earns the
// full 5, all but one earns 2.
func processingBonus(b Bonus) float64 {
	if b.PhasesTotal == 0 {
		return 0
	}
	switch {
	case b.PhasesSucceeded >= b.PhasesTotal:
		return processingCap
	case b.PhasesSucceeded >= 2:
		return 2
	}
	return 0
}

// ratingBands maps score floors to rating names, highest first.
var ratingBands = []struct {
	floor float64
	name  string
}{
	{90, "Exceptional"},
	{80, "Excellent"},
	{70, "Very Good"},
	{60, "Good"},
	{50, "Fair"},
	{35, "Poor"},
	{20, "Very Poor"},
}

// Rating maps a score to its band name.
func Rating(score float64) string {
	for _, band := range ratingBands {
		if score >= band.floor {
			return band.name
		}
	}
	return "Minimal"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
