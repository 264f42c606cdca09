// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// RodEngine renders pages in a headless Chromium via go-rod, so
// JS-populated institution pages expose their real content. One engine
// owns one browser; Fetch opens a tab per URL.
type RodEngine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRodEngine launches the browser. Call Close when done.
func NewRodEngine(headless bool) (*RodEngine, error) {
	l := launcher.New().Headless(headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return &RodEngine{browser: browser, launcher: l}, nil
}

// Name returns the engine identifier.
func (e *RodEngine) Name() string { return "rod" }

// Fetch renders the page, waits for load, and parses the DOM HTML into
// the artifact bundle.
func (e *RodEngine) Fetch(ctx context.Context, rawURL string, opts FetchOptions) (types.CrawlArtifact, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	page, err := e.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: rawURL})
	if err != nil {
		return types.CrawlArtifact{}, fmt.Errorf("open page %s: %w", rawURL, err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return types.CrawlArtifact{}, fmt.Errorf("load %s: %w", rawURL, err)
	}

	pageHTML, err := page.HTML()
	if err != nil {
		return types.CrawlArtifact{}, fmt.Errorf("read DOM of %s: %w", rawURL, err)
	}

	artifact := ParseArtifact(rawURL, pageHTML)
	artifact.Status = http.StatusOK
	artifact.FetchedAt = time.Now()
	if artifact.Title == "" {
		if info, err := page.Info(); err == nil {
			artifact.Title = info.Title
		}
	}
	return artifact, nil
}

// Close shuts the browser down and cleans up the launcher's temp state.
func (e *RodEngine) Close() error {
	err := e.browser.Close()
	e.launcher.Cleanup()
	return err
}
