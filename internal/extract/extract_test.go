// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/cache"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/normalize"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

type stubBackend struct {
	reply string
	err   error
	calls int
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Complete(_ context.Context, _, _ string, _ types.ExtractConfig) (Completion, error) {
	b.calls++
	if b.err != nil {
		return Completion{}, b.err
	}
	return Completion{Text: b.reply, InputTokens: 100, OutputTokens: 50, CostUSD: 0.001}, nil
}

func testKey() normalize.Key {
	return normalize.Key{Canonical: "harvard university", Type: types.TypeUniversity, Fingerprint: "abcdef0123456789"}
}

func TestRunParsesModelReply(t *testing.T) {
	backend := &stubBackend{reply: `{"name": "Harvard University", "founded": 1636, "weird_key": "x"}`}
	phase := NewPhase(backend, nil, types.ExtractConfig{}, nil)

	out, err := phase.Run(context.Background(), testKey(), types.TypeUniversity, "Harvard content.", false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.Record["name"].Text; got != "Harvard University" {
		t.Errorf("name = %q", got)
	}
	if got := out.Record["founded"].Number; got != 1636 {
		t.Errorf("founded = %v", got)
	}
	if len(out.Dropped) != 1 || out.Dropped[0] != "weird_key" {
		t.Errorf("Dropped = %v", out.Dropped)
	}
	if out.APICalls != 1 || out.InputTokens != 100 || out.CacheHit {
		t.Errorf("usage = %+v", out)
	}
}

func TestRunEmptyContent(t *testing.T) {
	phase := NewPhase(&stubBackend{}, nil, types.ExtractConfig{}, nil)
	if _, err := phase.Run(context.Background(), testKey(), types.TypeUniversity, "", false); !errors.Is(err, ErrFailed) {
		t.Errorf("err = %v, want ErrFailed", err)
	}
}

func TestRunBackendFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("rate limited")}
	phase := NewPhase(backend, nil, types.ExtractConfig{}, nil)

	out, err := phase.Run(context.Background(), testKey(), types.TypeUniversity, "content", false)
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("err = %v, want ErrFailed", err)
	}
	if out.APICalls != 1 {
		t.Errorf("APICalls = %d", out.APICalls)
	}
}

func TestRunUnparseableReply(t *testing.T) {
	backend := &stubBackend{reply: "I could not find any information."}
	phase := NewPhase(backend, nil, types.ExtractConfig{}, nil)

	out, err := phase.Run(context.Background(), testKey(), types.TypeUniversity, "content", false)
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("err = %v, want ErrFailed", err)
	}
	// Tokens were spent even though parsing failed.
	if out.InputTokens != 100 {
		t.Errorf("InputTokens = %d", out.InputTokens)
	}
}

func TestRunCachesResult(t *testing.T) {
	store, err := cache.Open(t.TempDir(), time.Hour, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	backend := &stubBackend{reply: `{"name": "Harvard University"}`}
	phase := NewPhase(backend, store, types.ExtractConfig{}, nil)

	if _, err := phase.Run(context.Background(), testKey(), types.TypeUniversity, "content", false); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	out, err := phase.Run(context.Background(), testKey(), types.TypeUniversity, "content", false)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !out.CacheHit {
		t.Error("second run missed the cache")
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
	if got := out.Record["name"].Text; got != "Harvard University" {
		t.Errorf("cached name = %q", got)
	}
}

func TestRunForceRefreshBypassesCache(t *testing.T) {
	store, err := cache.Open(t.TempDir(), time.Hour, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	backend := &stubBackend{reply: `{"name": "Harvard University"}`}
	phase := NewPhase(backend, store, types.ExtractConfig{}, nil)

	phase.Run(context.Background(), testKey(), types.TypeUniversity, "content", false)
	out, err := phase.Run(context.Background(), testKey(), types.TypeUniversity, "content", true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.CacheHit || backend.calls != 2 {
		t.Errorf("CacheHit = %v, calls = %d", out.CacheHit, backend.calls)
	}
}

func TestRunContentChangesCacheKey(t *testing.T) {
	store, err := cache.Open(t.TempDir(), time.Hour, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	backend := &stubBackend{reply: `{"name": "Harvard University"}`}
	phase := NewPhase(backend, store, types.ExtractConfig{}, nil)

	phase.Run(context.Background(), testKey(), types.TypeUniversity, "content one", false)
	out, _ := phase.Run(context.Background(), testKey(), types.TypeUniversity, "content two", false)
	if out.CacheHit || backend.calls != 2 {
		t.Errorf("different content reused cache: hit=%v calls=%d", out.CacheHit, backend.calls)
	}
}

func TestParseResponseFenced(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bare", `{"name": "MIT"}`},
		{"fenced", "```json\n{\"name\": \"MIT\"}\n```"},
		{"fenced no tag", "```\n{\"name\": \"MIT\"}\n```"},
		{"prose around", "Here is the data:\n{\"name\": \"MIT\"}\nDone."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, err := ParseResponse(tt.in)
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if got := rec["name"].Text; got != "MIT" {
				t.Errorf("name = %q", got)
			}
		})
	}
}

func TestParseResponsePlaceholdersOmitted(t *testing.T) {
	rec, _, err := ParseResponse(`{"name": "MIT", "phone": "N/A", "email": ""}`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rec["phone"]; ok {
		t.Error("placeholder phone stored")
	}
	if _, ok := rec["email"]; ok {
		t.Error("empty email stored")
	}
}

func TestParseResponseNoJSON(t *testing.T) {
	if _, _, err := ParseResponse("no object here"); err == nil {
		t.Error("want error for missing JSON")
	}
}

func TestSystemPromptFiltersSpecializedFields(t *testing.T) {
	uni := systemPrompt(types.TypeUniversity)
	if !strings.Contains(uni, "student_population") {
		t.Error("university prompt missing student_population")
	}
	if strings.Contains(uni, "bed_count") {
		t.Error("university prompt leaked hospital field")
	}

	general := systemPrompt(types.TypeGeneral)
	if strings.Contains(general, "student_population") || strings.Contains(general, "stock_symbol") {
		t.Error("general prompt includes specialized fields")
	}
	if !strings.Contains(general, "- name") {
		t.Error("general prompt missing critical fields")
	}
}

func TestClaudeBackendComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version = %q", got)
		}
		var req claudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.System == "" || len(req.Messages) != 1 {
			t.Errorf("request = %+v", req)
		}
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "{\"name\": \"MIT\"}"}], "usage": {"input_tokens": 1200, "output_tokens": 40}}`)
	}))
	defer ts.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "sk-ant-test", Client: ts.Client()}
	cfg := types.ExtractConfig{AIConfig: types.AIConfig{Model: "claude-3-5-haiku-20241022"}}
	got, err := backend.Complete(context.Background(), "system", "user", cfg)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Text != `{"name": "MIT"}` {
		t.Errorf("Text = %q", got.Text)
	}
	if got.InputTokens != 1200 || got.OutputTokens != 40 {
		t.Errorf("usage = %+v", got)
	}
	// 1200 in * $0.80/M + 40 out * $4.00/M
	want := 1200*0.80/1e6 + 40*4.00/1e6
	if diff := got.CostUSD - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("CostUSD = %v, want %v", got.CostUSD, want)
	}
}

func TestClaudeBackendErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"type": "invalid_request_error"}}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "sk-ant-test", Client: ts.Client()}
	if _, err := backend.Complete(context.Background(), "s", "u", types.ExtractConfig{}); err == nil {
		t.Error("want error on 400")
	}
}

func TestMergeMedia(t *testing.T) {
	artifacts := []types.ScoredArtifact{
		{
			CrawlArtifact: types.CrawlArtifact{
				ExternalLinks: []string{
					"https://twitter.com/mit",
					"https://www.facebook.com/mitnews",
					"https://example.com/other",
				},
				InternalLinks: []string{"https://mit.edu/report.pdf", "https://mit.edu/about"},
			},
			Media: []types.ScoredImage{
				{ImageRef: types.ImageRef{Src: "https://mit.edu/logo.png"}, LogoConfidence: 0.9, Relevance: 6},
				{ImageRef: types.ImageRef{Src: "https://mit.edu/campus.jpg"}, Relevance: 5},
				{ImageRef: types.ImageRef{Src: "https://mit.edu/students.jpg"}, Relevance: 4},
				{ImageRef: types.ImageRef{Src: "https://mit.edu/icon.png"}, Relevance: 1},
			},
		},
		{
			CrawlArtifact: types.CrawlArtifact{
				ExternalLinks: []string{"https://twitter.com/mit_other"},
			},
			Media: []types.ScoredImage{
				// Duplicate src from page one: dropped.
				{ImageRef: types.ImageRef{Src: "https://mit.edu/campus.jpg"}, Relevance: 5},
				{ImageRef: types.ImageRef{Src: "https://mit.edu/alt-logo.png"}, LogoConfidence: 0.6, Relevance: 6},
			},
		},
	}

	m := MergeMedia(artifacts)

	if len(m.Logos) != 2 || m.Logos[0].Src != "https://mit.edu/logo.png" {
		t.Errorf("Logos = %+v", m.Logos)
	}
	if len(m.Images) != 4 {
		t.Errorf("got %d images, want 4", len(m.Images))
	}
	if len(m.FacilityImages) != 3 {
		t.Errorf("got %d facility images, want 3", len(m.FacilityImages))
	}

	if len(m.SocialLinks) != 2 {
		t.Fatalf("SocialLinks = %+v", m.SocialLinks)
	}
	byPlatform := map[string]string{}
	for _, l := range m.SocialLinks {
		byPlatform[l.Platform] = l.URL
	}
	// First twitter link wins; the second page's handle is ignored.
	if byPlatform["twitter"] != "https://twitter.com/mit" {
		t.Errorf("twitter = %q", byPlatform["twitter"])
	}
	if byPlatform["facebook"] != "https://www.facebook.com/mitnews" {
		t.Errorf("facebook = %q", byPlatform["facebook"])
	}

	if len(m.Documents) != 1 || m.Documents[0] != "https://mit.edu/report.pdf" {
		t.Errorf("Documents = %v", m.Documents)
	}
}

func TestMergeMediaEmpty(t *testing.T) {
	m := MergeMedia(nil)
	if len(m.Logos)+len(m.Images)+len(m.SocialLinks)+len(m.Documents) != 0 {
		t.Errorf("merge of nothing = %+v", m)
	}
}
