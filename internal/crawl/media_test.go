// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"math"
	"testing"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

func TestLogoConfidence(t *testing.T) {
	tests := []struct {
		name string
		img  types.ImageRef
		want float64
	}{
		{
			name: "full confidence header logo",
			img: types.ImageRef{
				Src: "/img/logo.png", Alt: "University X logo",
				Width: 120, Height: 80, DOMLocation: "header",
			},
			want: 1.0,
		},
		{
			name: "src only",
			img:  types.ImageRef{Src: "/assets/brand.svg"},
			want: 0.4,
		},
		{
			name: "alt carries institution name",
			img:  types.ImageRef{Src: "/img/x.png", Alt: "University X"},
			want: 0.3,
		},
		{
			name: "dimensions only",
			img:  types.ImageRef{Src: "/img/x.png", Width: 200, Height: 100},
			want: 0.2,
		},
		{
			name: "photo dimensions score nothing",
			img:  types.ImageRef{Src: "/img/x.png", Width: 1200, Height: 800},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogoConfidence(tt.img, "University X")
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LogoConfidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogoConfidenceClamped(t *testing.T) {
	img := types.ImageRef{
		Src: "/logo-brand.png", Alt: "logo of University X",
		Width: 100, Height: 100, DOMLocation: "near-title",
	}
	if got := LogoConfidence(img, "University X"); got != 1.0 {
		t.Errorf("LogoConfidence = %v, want clamped 1.0", got)
	}
}

func TestRelevanceConfirmedLogo(t *testing.T) {
	// A small header logo scores 6 despite its icon-like dimensions.
	img := types.ImageRef{
		Src: "/img/logo.png", Alt: "University X logo",
		Width: 120, Height: 80, DOMLocation: "header",
	}
	conf := LogoConfidence(img, "University X")
	if conf != 1.0 {
		t.Fatalf("LogoConfidence = %v, want 1.0", conf)
	}
	if got := Relevance(img, conf); got != 6 {
		t.Errorf("Relevance = %d, want 6", got)
	}
}

func TestRelevanceBands(t *testing.T) {
	tests := []struct {
		name string
		img  types.ImageRef
		want int
	}{
		{
			name: "ad host",
			img:  types.ImageRef{Src: "https://ads.doubleclick.net/pixel.png", Width: 300, Height: 300},
			want: 0,
		},
		{
			name: "tiny icon",
			img:  types.ImageRef{Src: "/icons/search.png", Alt: "search icon", Width: 32, Height: 32},
			want: 1,
		},
		{
			name: "nav placement",
			img:  types.ImageRef{Src: "/img/x.jpg", Width: 400, Height: 300, DOMLocation: "nav"},
			want: 1,
		},
		{
			name: "small decorative",
			img:  types.ImageRef{Src: "/img/divider.png", Width: 180, Height: 40},
			want: 1, // height <= 64 px reads as an icon before the decorative band
		},
		{
			name: "decorative keyword",
			img:  types.ImageRef{Src: "/img/x.jpg", Alt: "background pattern", Width: 500, Height: 400},
			want: 2,
		},
		{
			name: "campus photograph",
			img:  types.ImageRef{Src: "/img/x.jpg", Alt: "main campus quad", Width: 800, Height: 600},
			want: 5,
		},
		{
			name: "facility below photo size",
			img:  types.ImageRef{Src: "/img/x.jpg", Alt: "campus building", Width: 250, Height: 250},
			want: 2, // facility terms need photograph dimensions to reach 5
		},
		{
			name: "activity shot",
			img:  types.ImageRef{Src: "/img/x.jpg", Alt: "students at graduation", Width: 640, Height: 480},
			want: 4,
		},
		{
			name: "main content generic",
			img:  types.ImageRef{Src: "/img/x.jpg", Width: 640, Height: 480, DOMLocation: "main-content"},
			want: 3,
		},
		{
			name: "unplaced generic",
			img:  types.ImageRef{Src: "/img/x.jpg", Width: 640, Height: 480},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := LogoConfidence(tt.img, "University X")
			if got := Relevance(tt.img, conf); got != tt.want {
				t.Errorf("Relevance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreImages(t *testing.T) {
	images := []types.ImageRef{
		{Src: "/img/logo.png", Alt: "University X logo", Width: 120, Height: 80, DOMLocation: "header"},
		{Src: "/img/campus.jpg", Alt: "campus aerial view", Width: 1024, Height: 768},
	}
	scored := ScoreImages(images, "University X")
	if len(scored) != 2 {
		t.Fatalf("scored %d images, want 2", len(scored))
	}
	if scored[0].Relevance != 6 || scored[0].LogoConfidence < 0.5 {
		t.Errorf("logo scored %+v", scored[0])
	}
	if scored[1].Relevance != 5 {
		t.Errorf("campus photo relevance = %d, want 5", scored[1].Relevance)
	}
}
