// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/httputil"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// googleSearchBase is the Custom Search JSON API endpoint. Declared as a
// var so tests can substitute an httptest server.
var googleSearchBase = "https://www.googleapis.com/customsearch/v1"

// GoogleBackend queries the Google Custom Search JSON API.
type GoogleBackend struct {
	Client *http.Client
	APIKey string
	CX     string
}

// Name returns the backend identifier.
func (b *GoogleBackend) Name() string { return "google_cse" }

// Search queries the API and maps items into search links. Rate limits
// and transient server errors are retried with backoff bounded by the
// caller's context.
func (b *GoogleBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchLink, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if b.APIKey == "" || b.CX == "" {
		return nil, fmt.Errorf("google search credentials not configured")
	}

	num := cfg.NumResults
	if num <= 0 {
		num = 10
	}
	if num > 10 {
		// The API serves at most 10 items per request.
		num = 10
	}

	params := url.Values{
		"key": {b.APIKey},
		"cx":  {b.CX},
		"q":   {query},
		"num": {fmt.Sprintf("%d", num)},
	}
	if cfg.Language != "" {
		params.Set("lr", "lang_"+cfg.Language)
	}
	if cfg.Country != "" {
		params.Set("gl", cfg.Country)
	}
	if cfg.SafeSearch {
		params.Set("safe", "active")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 2)
	if err != nil {
		return nil, fmt.Errorf("google search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search returned HTTP %d", resp.StatusCode)
	}

	var gr googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("parsing google search response: %w", err)
	}

	links := make([]types.SearchLink, 0, len(gr.Items))
	for _, item := range gr.Items {
		if item.Link == "" {
			continue
		}
		links = append(links, types.SearchLink{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
			Domain:  strings.ToLower(item.DisplayLink),
		})
	}
	return links, nil
}

// googleResponse mirrors the fields of the Custom Search result payload
// this package reads.
type googleResponse struct {
	Items []googleItem `json:"items"`
}

type googleItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}
