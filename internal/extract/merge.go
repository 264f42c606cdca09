// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"net/url"
	"sort"
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Media selection thresholds. Logo candidates need confidence 0.5; an
// image joins the gallery at relevance 3 and the facility set at 5.
const (
	mergeLogoMin     = 0.5
	mergeImageMin    = 3
	mergeFacilityMin = 5
)

// socialPlatforms maps host suffixes to platform names. First link per
// platform wins.
var socialPlatforms = []struct {
	host     string
	platform string
}{
	{"facebook.com", "facebook"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"instagram.com", "instagram"},
	{"linkedin.com", "linkedin"},
	{"youtube.com", "youtube"},
	{"tiktok.com", "tiktok"},
}

// documentExtensions are link suffixes collected as documents.
var documentExtensions = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx"}

// Media is the crawl-derived media bundle merged into the final result
// alongside the extracted fields.
type Media struct {
	Logos          []types.ScoredImage
	Images         []types.ScoredImage
	FacilityImages []types.ScoredImage
	SocialLinks    []types.SocialLink
	Documents      []string
}

// MergeMedia aggregates scored media across all crawled pages. Images are
// deduplicated by source URL; logos order by confidence, the galleries by
// relevance.
func MergeMedia(artifacts []types.ScoredArtifact) Media {
	var m Media
	seen := make(map[string]bool)

	for _, a := range artifacts {
		for _, img := range a.Media {
			if img.Src == "" || seen[img.Src] {
				continue
			}
			seen[img.Src] = true

			if img.LogoConfidence >= mergeLogoMin {
				m.Logos = append(m.Logos, img)
			}
			if img.Relevance >= mergeImageMin {
				m.Images = append(m.Images, img)
			}
			if img.Relevance >= mergeFacilityMin {
				m.FacilityImages = append(m.FacilityImages, img)
			}
		}
		m.SocialLinks = appendSocial(m.SocialLinks, a.ExternalLinks)
		m.Documents = appendDocuments(m.Documents, a.InternalLinks, a.ExternalLinks)
	}

	sort.SliceStable(m.Logos, func(i, j int) bool {
		return m.Logos[i].LogoConfidence > m.Logos[j].LogoConfidence
	})
	sort.SliceStable(m.Images, func(i, j int) bool {
		return m.Images[i].Relevance > m.Images[j].Relevance
	})
	sort.SliceStable(m.FacilityImages, func(i, j int) bool {
		return m.FacilityImages[i].Relevance > m.FacilityImages[j].Relevance
	})
	return m
}

// appendSocial classifies links against the platform table, keeping the
// first link found for each platform.
func appendSocial(links []types.SocialLink, candidates []string) []types.SocialLink {
	have := make(map[string]bool, len(links))
	for _, l := range links {
		have[l.Platform] = true
	}

	for _, raw := range candidates {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
		for _, p := range socialPlatforms {
			if host != p.host && !strings.HasSuffix(host, "."+p.host) {
				continue
			}
			if !have[p.platform] {
				have[p.platform] = true
				links = append(links, types.SocialLink{Platform: p.platform, URL: raw})
			}
			break
		}
	}
	return links
}

// appendDocuments collects links with document extensions, deduplicated.
func appendDocuments(docs []string, linkSets ...[]string) []string {
	have := make(map[string]bool, len(docs))
	for _, d := range docs {
		have[d] = true
	}
	for _, set := range linkSets {
		for _, raw := range set {
			lower := strings.ToLower(raw)
			if i := strings.IndexAny(lower, "?#"); i >= 0 {
				lower = lower[:i]
			}
			for _, ext := range documentExtensions {
				if strings.HasSuffix(lower, ext) {
					if !have[raw] {
						have[raw] = true
						docs = append(docs, raw)
					}
					break
				}
			}
		}
	}
	return docs
}
