// Package fetch retrieves web pages over HTTP for extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PageFetcher = (*Fetcher)(nil)

const (
	// defaultTimeout bounds one fetch end to end
	defaultTimeout = 15 * time.Second

	// maxBodySize caps the response body at 10 MB
	maxBodySize = 10 << 20

	// userAgent presented to origin servers. Some sites serve reduced
	// markup to unknown agents, so use a browser string.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxRedirects before giving up
	maxRedirects = 10
)

// Fetcher implements driven.PageFetcher over net/http
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a page fetcher with sane timeouts
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// NewFetcherWithClient creates a fetcher with a caller-supplied client,
// used in tests
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves a page. Failures wrap domain.ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*driven.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetchFailed, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrFetchFailed, err)
	}

	return &driven.FetchedPage{
		URL:        url,
		FinalURL:   resp.Request.URL.String(),
		HTML:       string(body),
		StatusCode: resp.StatusCode,
	}, nil
}
