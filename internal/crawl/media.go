// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// Logo confidence contributions. The sum is clamped to 1.0; an image at
// or above logoCandidateMin is treated as a logo candidate downstream.
const (
	logoSrcWeight  = 0.4
	logoAltWeight  = 0.3
	logoDimsWeight = 0.2
	logoSpotWeight = 0.2

	logoCandidateMin = 0.5
	confirmedLogoMin = 0.8
)

// adHosts mark advertisement, share-button, and tracker image sources.
var adHosts = []string{
	"doubleclick", "googlesyndication", "adservice", "adsystem",
	"sharethis", "addthis", "pixel.", "analytics",
}

// facilityTerms suggest a campus or facility photograph.
var facilityTerms = []string{
	"campus", "facility", "building", "headquarters", "branch",
	"library", "laboratory", "ward", "branding",
}

// activityTerms suggest institutional activity shots.
var activityTerms = []string{
	"program", "event", "staff", "student", "faculty", "research",
	"graduation", "lecture", "patient", "treatment", "ceremony",
}

// decorativeTerms mark filler imagery.
var decorativeTerms = []string{"decorative", "background", "divider", "spacer", "pattern"}

// uiTerms mark navigation affordances.
var uiTerms = []string{"icon", "arrow", "button", "chevron", "hamburger", "search"}

// LogoConfidence scores how likely an image is the institution's logo.
// Contributions: src naming, alt naming, logo-typical dimensions, and
// header placement; clamped to 1.0.
func LogoConfidence(img types.ImageRef, institutionName string) float64 {
	src := strings.ToLower(img.Src)
	alt := strings.ToLower(img.Alt)

	conf := 0.0
	if strings.Contains(src, "logo") || strings.Contains(src, "brand") {
		conf += logoSrcWeight
	}
	if strings.Contains(alt, "logo") || containsNameToken(alt, institutionName) {
		conf += logoAltWeight
	}
	if img.Width >= 50 && img.Width <= 400 && img.Height >= 50 && img.Height <= 200 {
		conf += logoDimsWeight
	}
	if img.DOMLocation == "header" || img.DOMLocation == "near-title" {
		conf += logoSpotWeight
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// containsNameToken reports whether any significant token of the
// institution name appears in s.
func containsNameToken(s, name string) bool {
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		if len(tok) > 2 && strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// Relevance assigns the 0-6 usefulness score. A confirmed logo always
// scores 6; otherwise the bands are evaluated most-conservative first so
// an image matching several descriptions gets the lower score.
func Relevance(img types.ImageRef, logoConfidence float64) int {
	if logoConfidence >= confirmedLogoMin {
		return 6
	}

	src := strings.ToLower(img.Src)
	alt := strings.ToLower(img.Alt)
	context := alt + " " + strings.ToLower(img.SurroundingText)

	if containsAny(src, adHosts) {
		return 0
	}
	if (img.Width > 0 && img.Width <= 64) || (img.Height > 0 && img.Height <= 64) ||
		img.DOMLocation == "nav" || containsAny(alt, uiTerms) {
		return 1
	}
	if img.Width < 200 || img.Height < 200 || containsAny(context, decorativeTerms) {
		return 2
	}
	if containsAny(context, facilityTerms) && img.Width >= 300 && img.Height >= 300 {
		return 5
	}
	if containsAny(context, activityTerms) {
		return 4
	}
	if img.DOMLocation == "main-content" {
		return 3
	}
	return 2
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// ScoreImages runs both scorers over an artifact's images.
func ScoreImages(images []types.ImageRef, institutionName string) []types.ScoredImage {
	scored := make([]types.ScoredImage, 0, len(images))
	for _, img := range images {
		conf := LogoConfidence(img, institutionName)
		scored = append(scored, types.ScoredImage{
			ImageRef:       img,
			Relevance:      Relevance(img, conf),
			LogoConfidence: conf,
		})
	}
	return scored
}
