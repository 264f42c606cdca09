// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/httputil"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// maxBodyBytes bounds how much of a page is read. Institution pages past
// this size carry no additional profile signal.
const maxBodyBytes = 4 << 20

// HTTPEngine fetches pages with a plain HTTP client. It is the engine
// used when JS rendering is disabled, and the default for tests.
type HTTPEngine struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the engine identifier.
func (e *HTTPEngine) Name() string { return "http" }

// Fetch downloads the page body and parses it into the artifact bundle.
func (e *HTTPEngine) Fetch(ctx context.Context, rawURL string, opts FetchOptions) (types.CrawlArtifact, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.CrawlArtifact{}, fmt.Errorf("creating request: %w", err)
	}
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 1)
	if err != nil {
		return types.CrawlArtifact{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.CrawlArtifact{}, fmt.Errorf("read %s: %w", rawURL, err)
	}

	artifact := ParseArtifact(rawURL, string(body))
	artifact.Status = resp.StatusCode
	artifact.FetchedAt = time.Now()
	return artifact, nil
}
