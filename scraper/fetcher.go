package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Fetcher produces a parsed document for a URL. A nil document with an
// error means the variant is skipped for this cycle; no retry happens
// within the cycle.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
	Close()
}

// BrowserFetcher renders pages in a headless browser so that
// JavaScript-built markup is present before extraction.
type BrowserFetcher struct {
	browser *rod.Browser
	settle  time.Duration
}

// NewBrowserFetcher launches the browser. Uses system Chromium when running
// in Docker, auto-detects locally.
func NewBrowserFetcher(settle time.Duration) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	} else {
		log.Printf("Using auto-detected Chromium (local environment)")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	return &BrowserFetcher{browser: browser, settle: settle}, nil
}

// Fetch loads the page, waits for dynamic content to settle and returns the
// rendered document. The context deadline abandons slow page loads.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	// Mask the most common automation fingerprints before navigating.
	_, err = page.EvalOnNewDocument(`
		Object.defineProperty(navigator, 'webdriver', {
			get: () => undefined,
		});
		Object.defineProperty(navigator, 'languages', {
			get: () => ['en-US', 'en'],
		});
		window.chrome = { runtime: {} };
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare page: %v", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to set viewport: %v", err)
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %v", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %v", url, err)
	}

	// Dynamic sites keep rewriting prices after load.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.settle):
	}

	rendered, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %v", err)
	}

	return goquery.NewDocumentFromReader(strings.NewReader(rendered))
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			log.Printf("Failed to close browser: %v", err)
		}
	}
}

// HTTPFetcher retrieves pages over plain HTTP for stores that serve
// complete markup without JavaScript.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher builds a client with browser-like request headers.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7",
			"Referer":         "https://www.google.com/",
			"DNT":             "1",
		})
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %v", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode())
	}
	return goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
}

func (f *HTTPFetcher) Close() {}
