// ABOUTME: Service interfaces for the fetch-cache-extract pipeline
// ABOUTME: Defines contracts between the fetcher, extractor, cache and queue

package interfaces

import (
	"context"

	"newswire-api/core/domain"
)

// Fetcher retrieves a source URL, retrying as configured.
// It never returns a Go error: failures are reported as error results.
type Fetcher interface {
	Fetch(ctx context.Context, url string) domain.FetchResult
}

// Extractor turns a fetched payload into structured fields
type Extractor interface {
	Extract(payload, pageURL string) domain.Extraction
}

// ResultCache is the two-tier result cache
type ResultCache interface {
	Get(ctx context.Context, url string) (domain.FetchResult, bool)
	Put(ctx context.Context, url string, result domain.FetchResult)
}

// Pipeline produces a complete result for a URL: fetch, extract, annotate
type Pipeline interface {
	Process(ctx context.Context, url string) domain.FetchResult
}
