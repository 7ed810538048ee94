package driven

import "context"

// FetchedPage is the raw result of retrieving a page over HTTP.
type FetchedPage struct {
	// URL is the requested URL
	URL string
	// FinalURL is the URL after redirects
	FinalURL string
	// HTML is the response body
	HTML string
	// StatusCode is the final HTTP status
	StatusCode int
}

// PageFetcher retrieves pages over HTTP
type PageFetcher interface {
	// Fetch retrieves a page. Failures wrap domain.ErrFetchFailed.
	Fetch(ctx context.Context, url string) (*FetchedPage, error)
}
