// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// typeKeywords maps distinguishing name tokens to an institution type.
// Scanned in order so "university hospital" resolves as university.
var typeKeywords = []struct {
	tokens []string
	t      types.InstitutionType
}{
	{[]string{"university", "college", "institute", "academy", "school"}, types.TypeUniversity},
	{[]string{"hospital", "clinic", "medical", "health"}, types.TypeHospital},
	{[]string{"bank", "banking", "financial", "credit"}, types.TypeBank},
}

// enrichment appends type-specific terms that steer the provider toward
// institutional pages rather than news coverage.
var enrichment = map[types.InstitutionType]string{
	types.TypeUniversity: "university college education academic research",
	types.TypeHospital:   "hospital medical healthcare patient services",
	types.TypeBank:       "bank banking financial services finance",
	types.TypeGeneral:    "official organization institution",
}

// siteFilters suggest the domains where official pages for the type live.
var siteFilters = map[types.InstitutionType]string{
	types.TypeUniversity: "site:edu OR site:ac.uk",
	types.TypeHospital:   "site:org OR site:gov",
}

// InferType guesses the institution type from name tokens, defaulting to
// general when nothing distinguishes it.
func InferType(name string) types.InstitutionType {
	lowered := " " + strings.ToLower(name) + " "
	for _, group := range typeKeywords {
		for _, tok := range group.tokens {
			if strings.Contains(lowered, " "+tok) {
				return group.t
			}
		}
	}
	return types.TypeGeneral
}

// BuildQuery assembles the provider query: name, type enrichment,
// recognized options, and a site filter. A domain hint replaces the
// generic site filter since it is strictly narrower.
func BuildQuery(name string, instType types.InstitutionType, opts types.RequestOptions) string {
	parts := []string{strings.TrimSpace(name)}

	if terms := enrichment[instType]; terms != "" {
		parts = append(parts, terms)
	}
	if loc := strings.TrimSpace(opts.Location); loc != "" {
		parts = append(parts, loc)
	}
	for _, kw := range opts.AdditionalKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			parts = append(parts, kw)
		}
	}
	for _, term := range opts.ExcludeTerms {
		if term = strings.TrimSpace(term); term != "" {
			parts = append(parts, "-"+term)
		}
	}

	if hint := strings.TrimSpace(opts.DomainHint); hint != "" {
		parts = append(parts, "site:"+hint)
	} else if filter := siteFilters[instType]; filter != "" {
		parts = append(parts, filter)
	}

	return strings.Join(parts, " ")
}
