// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/url"
	"sort"
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/httputil"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Link priority scoring weights.
const (
	scorePreferredTLD = 100
	scoreTypeKeyword  = 15
	maxKeywordHits    = 3
	scoreOfficial     = 50
	scoreSocialHost   = -20
	scoreDomainHint   = 20

	tierHighThreshold   = 100
	tierMediumThreshold = 50
)

// preferredTLDs are the top-level domains where official pages for each
// institution type usually live.
var preferredTLDs = map[types.InstitutionType][]string{
	types.TypeUniversity: {".edu", ".ac.uk"},
	types.TypeHospital:   {".org", ".gov"},
	types.TypeBank:       {".com"},
	types.TypeGeneral:    {".org", ".com"},
}

// socialHosts downrank aggregator pages that never carry primary content.
var socialHosts = []string{
	"facebook.com", "twitter.com", "x.com", "instagram.com",
	"linkedin.com", "youtube.com", "tiktok.com", "wikipedia.org",
}

// Prioritize scores and tiers provider results, returning the top k in
// tier-then-score order. Scores and tiers are recorded on the links so the
// crawler can budget per tier.
func Prioritize(results []types.SearchLink, instType types.InstitutionType, domainHint string, k int) []types.SearchLink {
	hint := strings.ToLower(strings.TrimSpace(domainHint))

	scored := make([]types.SearchLink, 0, len(results))
	seen := make(map[string]bool)
	for _, link := range results {
		canonical := httputil.CanonicalURL(link.URL)
		if canonical == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true

		link.Priority = score(link, instType, hint)
		link.Tier = tierFor(link.Priority)
		scored = append(scored, link)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if ti, tj := tierRank(scored[i].Tier), tierRank(scored[j].Tier); ti != tj {
			return ti < tj
		}
		if scored[i].Priority != scored[j].Priority {
			return scored[i].Priority > scored[j].Priority
		}
		return scored[i].URL < scored[j].URL
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func score(link types.SearchLink, instType types.InstitutionType, hint string) int {
	domain := strings.ToLower(link.Domain)
	if domain == "" {
		domain = hostOf(link.URL)
	}
	lowerURL := strings.ToLower(link.URL)
	lowerTitle := strings.ToLower(link.Title)

	s := 0
	for _, tld := range preferredTLDs[instType] {
		if strings.HasSuffix(domain, tld) {
			s += scorePreferredTLD
			break
		}
	}

	hits := 0
	for _, group := range typeKeywords {
		if group.t != instType {
			continue
		}
		for _, tok := range group.tokens {
			if strings.Contains(lowerURL, tok) || strings.Contains(lowerTitle, tok) {
				hits++
				if hits == maxKeywordHits {
					break
				}
			}
		}
	}
	s += hits * scoreTypeKeyword

	if official(lowerURL, lowerTitle) {
		s += scoreOfficial
	}
	for _, host := range socialHosts {
		if strings.HasSuffix(domain, host) {
			s += scoreSocialHost
			break
		}
	}
	if hint != "" && strings.HasSuffix(domain, hint) {
		s += scoreDomainHint
	}
	return s
}

// official detects homepage-style results: a bare path, an about page, or
// an explicitly official title.
func official(lowerURL, lowerTitle string) bool {
	u, err := url.Parse(lowerURL)
	if err == nil {
		path := strings.TrimSuffix(u.Path, "/")
		if path == "" || strings.Contains(path, "about") {
			return true
		}
	}
	return strings.Contains(lowerTitle, "official")
}

func tierFor(priority int) types.Tier {
	switch {
	case priority >= tierHighThreshold:
		return types.TierHigh
	case priority >= tierMediumThreshold:
		return types.TierMedium
	default:
		return types.TierLow
	}
}

func tierRank(t types.Tier) int {
	switch t {
	case types.TierHigh:
		return 0
	case types.TierMedium:
		return 1
	default:
		return 2
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
