// ABOUTME: Pipeline turns one source URL into a complete result: fetch, extract, annotate
// ABOUTME: Shared by the background queue and the synchronous batch mode

package news

import (
	"context"

	"newswire-api/core/domain"
	"newswire-api/core/interfaces"
)

// OwnerResolver maps a page URL to the publication that owns it
type OwnerResolver interface {
	Owner(pageURL string) string
}

// PipelineOptions tunes what a processed result carries
type PipelineOptions struct {
	// KeepRaw keeps the decoded page body on successful results
	KeepRaw bool
}

// Pipeline implements interfaces.Pipeline
type Pipeline struct {
	fetcher   interfaces.Fetcher
	extractor interfaces.Extractor
	owners    OwnerResolver
	logger    interfaces.Logger
	opts      PipelineOptions
}

// NewPipeline creates a pipeline. owners may be nil.
func NewPipeline(fetcher interfaces.Fetcher, extractor interfaces.Extractor, owners OwnerResolver, logger interfaces.Logger, opts PipelineOptions) *Pipeline {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		owners:    owners,
		logger:    logger,
		opts:      opts,
	}
}

// Process fetches url and, on success, extracts its content
func (p *Pipeline) Process(ctx context.Context, url string) domain.FetchResult {
	result := p.fetcher.Fetch(ctx, url)

	if result.IsSuccess() {
		extraction := p.extractor.Extract(result.RawPayload, url)
		result.Title = extraction.Title
		result.Description = extraction.Description
		result.Links = extraction.Links
		result.Articles = extraction.Articles

		p.logger.Debug("Extracted source", map[string]interface{}{
			"url":      url,
			"links":    len(result.Links),
			"articles": len(result.Articles),
		})
	}

	if p.owners != nil {
		result.Owner = p.owners.Owner(url)
	}
	if !p.opts.KeepRaw {
		result.RawPayload = ""
	}
	result.Normalize()
	return result
}
