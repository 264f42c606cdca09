// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html><head>
<title>University X — Home</title>
<meta name="description" content="The official site of University X.">
<meta property="og:site_name" content="University X">
<script type="application/ld+json">
{ "@type": "CollegeOrUniversity",
  "name": "University X" }
</script>
<style>body { color: red }</style>
</head><body>
<header><img src="/img/logo.png" alt="University X logo" width="120" height="80"></header>
<nav><a href="/about">About</a></nav>
<main>
<h1>Welcome to University X</h1>
<p>Founded in 1900, University X serves 20,000 students.</p>
<ul><li>Programs</li><li>Research</li></ul>
<img src="/img/campus.jpg" alt="campus aerial view" width="1024" height="768">
<a href="https://twitter.com/universityx">Twitter</a>
<video src="/media/tour.mp4"></video>
</main>
<footer><p>Contact us</p></footer>
</body></html>`

func TestParseArtifact(t *testing.T) {
	a := ParseArtifact("https://www.universityx.edu/home", samplePage)

	if a.Title != "University X — Home" {
		t.Errorf("Title = %q", a.Title)
	}
	if got := a.Metadata["description"]; got != "The official site of University X." {
		t.Errorf("description = %q", got)
	}
	if got := a.Metadata["og:site_name"]; got != "University X" {
		t.Errorf("og:site_name = %q", got)
	}

	if len(a.StructuredData) != 1 {
		t.Fatalf("StructuredData = %v", a.StructuredData)
	}
	if want := `{"@type":"CollegeOrUniversity","name":"University X"}`; a.StructuredData[0] != want {
		t.Errorf("JSON-LD not compacted: %q", a.StructuredData[0])
	}

	if len(a.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(a.Images))
	}
	logo := a.Images[0]
	if logo.Src != "https://www.universityx.edu/img/logo.png" {
		t.Errorf("logo src = %q, want resolved absolute URL", logo.Src)
	}
	if logo.Width != 120 || logo.Height != 80 || logo.DOMLocation != "header" {
		t.Errorf("logo = %+v", logo)
	}
	if a.Images[1].DOMLocation != "main-content" {
		t.Errorf("campus image location = %q", a.Images[1].DOMLocation)
	}

	if len(a.InternalLinks) != 1 || !strings.HasSuffix(a.InternalLinks[0], "/about") {
		t.Errorf("internal links = %v", a.InternalLinks)
	}
	if len(a.ExternalLinks) != 1 || !strings.Contains(a.ExternalLinks[0], "twitter.com") {
		t.Errorf("external links = %v", a.ExternalLinks)
	}
	if len(a.Videos) != 1 || !strings.HasSuffix(a.Videos[0], "/media/tour.mp4") {
		t.Errorf("videos = %v", a.Videos)
	}

	if a.SizeBytes != len(samplePage) {
		t.Errorf("SizeBytes = %d, want %d", a.SizeBytes, len(samplePage))
	}
}

func TestParseArtifactMarkdown(t *testing.T) {
	a := ParseArtifact("https://www.universityx.edu/home", samplePage)

	md := a.Markdown.PrimaryContent
	if !strings.Contains(md, "# Welcome to University X") {
		t.Errorf("markdown missing heading: %q", md)
	}
	if !strings.Contains(md, "Founded in 1900") {
		t.Errorf("markdown missing paragraph: %q", md)
	}
	if !strings.Contains(md, "- Programs") {
		t.Errorf("markdown missing list item: %q", md)
	}
	// Primary content comes from <main>: the footer must not leak in.
	if strings.Contains(md, "Contact us") {
		t.Errorf("markdown leaked footer content: %q", md)
	}

	// The fit rendering drops link targets but keeps text.
	if strings.Contains(a.Markdown.Fit, "twitter.com") {
		t.Errorf("fit markdown kept link URL: %q", a.Markdown.Fit)
	}

	if !strings.Contains(a.CleanedHTML, "<main>") {
		t.Errorf("cleaned HTML lost structure")
	}
	if strings.Contains(a.CleanedHTML, "<script") || strings.Contains(a.CleanedHTML, "<style") {
		t.Errorf("cleaned HTML kept script/style")
	}
}

func TestParseArtifactUnparseable(t *testing.T) {
	a := ParseArtifact("https://example.edu", "")
	if a.RawHTML != "" || a.URL != "https://example.edu" {
		t.Errorf("artifact = %+v", a)
	}
}

func TestHTTPEngineFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, samplePage)
	}))
	defer ts.Close()

	engine := &HTTPEngine{Client: ts.Client(), UserAgent: "profiler-test"}
	artifact, err := engine.Fetch(context.Background(), ts.URL, FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if artifact.Status != http.StatusOK {
		t.Errorf("Status = %d", artifact.Status)
	}
	if artifact.Title != "University X — Home" {
		t.Errorf("Title = %q", artifact.Title)
	}
	if artifact.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}
