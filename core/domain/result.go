// ABOUTME: FetchResult domain model is the one record returned per requested source
// ABOUTME: Carries fetch status, extracted title, same-origin links and articles

package domain

import "time"

// Status is the outcome of a fetch attempt sequence
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusPending Status = "pending"
)

// CacheTier names the cache tier a result was served from
type CacheTier string

const (
	TierMemory CacheTier = "memory"
	TierFile   CacheTier = "file"
)

const (
	// PendingStatusCode is reported on placeholder results
	PendingStatusCode = 202

	// PendingTitle is the title shown while a source loads in the background
	PendingTitle = "Loading..."

	// ExtractionFailedTitle marks a page whose extraction failed entirely
	ExtractionFailedTitle = "Error extracting content"
)

// Link is a same-origin anchor found on a page
type Link struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Article is a structured record pulled out of an article container
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
}

// FetchResult is the outcome for a single source URL
type FetchResult struct {
	// URL is the requested source URL
	URL string `json:"url"`

	// Status is success, error or pending
	Status Status `json:"status"`

	// StatusCode is the last HTTP status seen, 0 for network failures
	StatusCode int `json:"statusCode,omitempty"`

	// Timestamp is when the fetch attempt sequence finished
	Timestamp time.Time `json:"timestamp"`

	// RawPayload is the decoded page body, kept only when configured
	RawPayload string `json:"rawPayload,omitempty"`

	// Extracted fields
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Owner is the display name of the publication that owns the URL
	Owner string `json:"owner,omitempty"`

	// Error describes the last failure for error results
	Error string `json:"error,omitempty"`

	// FromCache is set when the result was served from a cache tier
	FromCache CacheTier `json:"fromCache,omitempty"`

	Links    []Link    `json:"links"`
	Articles []Article `json:"articles"`
}

// Normalize guarantees Links and Articles are never nil
func (r *FetchResult) Normalize() {
	if r.Links == nil {
		r.Links = []Link{}
	}
	if r.Articles == nil {
		r.Articles = []Article{}
	}
}

// Clone returns a copy that shares no slices with the receiver
func (r FetchResult) Clone() FetchResult {
	out := r
	out.Links = append([]Link(nil), r.Links...)
	out.Articles = append([]Article(nil), r.Articles...)
	out.Normalize()
	return out
}

// IsSuccess reports whether the result carries fetched content
func (r FetchResult) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// NewPendingResult builds the placeholder returned while a fetch runs in the background
func NewPendingResult(url string, now time.Time) FetchResult {
	return FetchResult{
		URL:        url,
		Status:     StatusPending,
		StatusCode: PendingStatusCode,
		Timestamp:  now,
		Title:      PendingTitle,
		Links:      []Link{},
		Articles:   []Article{},
	}
}

// NewErrorResult builds an error result for url
func NewErrorResult(url string, statusCode int, err error, now time.Time) FetchResult {
	res := FetchResult{
		URL:        url,
		Status:     StatusError,
		StatusCode: statusCode,
		Timestamp:  now,
		Links:      []Link{},
		Articles:   []Article{},
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
