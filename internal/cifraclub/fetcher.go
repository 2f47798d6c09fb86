package cifraclub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"golang.org/x/time/rate"
)

// maxPageSize caps how much of a page is read
const maxPageSize = 8 << 20

// The site rejects requests that do not look like a desktop browser.
// Accept-Encoding is left to the transport so gzip is decoded for us.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Sec-Ch-Ua":                 `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
	"Sec-Ch-Ua-Mobile":          "?0",
	"Sec-Ch-Ua-Platform":        `"macOS"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

// Doer performs HTTP requests
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads pages with browser headers, paced by a token bucket
type Fetcher struct {
	client  Doer
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher. A nil limiter means no pacing.
func NewFetcher(client Doer, limiter *rate.Limiter) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client, limiter: limiter}
}

// Fetch returns the body of pageURL. Transport errors and non-2xx statuses become fetch errors.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", apperr.Fetch(0, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", apperr.InvalidInput("Invalid CifraClub URL").WithError(err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperr.Fetch(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.Fetch(resp.StatusCode, fmt.Errorf("GET %s: %s", pageURL, resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", apperr.Fetch(0, err)
	}
	return string(body), nil
}
