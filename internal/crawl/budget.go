// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import "github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"

// Budget is the per-tier resource allocation: how deep the engine may
// follow links from a URL and how many URLs of that tier are fetched.
type Budget struct {
	MaxDepth int
	MaxPages int
}

// budgetTables maps each strategy to its tier allocation. priority_based
// is the baseline; the other strategies trade depth against breadth.
var budgetTables = map[types.CrawlStrategy]map[types.Tier]Budget{
	types.StrategyPriorityBased: {
		types.TierHigh:   {MaxDepth: 3, MaxPages: 25},
		types.TierMedium: {MaxDepth: 2, MaxPages: 15},
		types.TierLow:    {MaxDepth: 1, MaxPages: 8},
	},
	types.StrategyEqual: {
		types.TierHigh:   {MaxDepth: 2, MaxPages: 15},
		types.TierMedium: {MaxDepth: 2, MaxPages: 15},
		types.TierLow:    {MaxDepth: 2, MaxPages: 15},
	},
	types.StrategyHighLinks: {
		types.TierHigh:   {MaxDepth: 2, MaxPages: 35},
		types.TierMedium: {MaxDepth: 1, MaxPages: 20},
		types.TierLow:    {MaxDepth: 1, MaxPages: 10},
	},
	types.StrategyHighDepth: {
		types.TierHigh:   {MaxDepth: 4, MaxPages: 15},
		types.TierMedium: {MaxDepth: 3, MaxPages: 10},
		types.TierLow:    {MaxDepth: 2, MaxPages: 5},
	},
}

// Budgets returns the tier allocation table for a strategy, defaulting to
// priority_based for the zero value or an unknown strategy.
func Budgets(strategy types.CrawlStrategy) map[types.Tier]Budget {
	if table, ok := budgetTables[strategy]; ok {
		return table
	}
	return budgetTables[types.StrategyPriorityBased]
}
