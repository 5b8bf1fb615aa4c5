package handlers

import (
	"fmt"

	coreerrors "newswire-api/core/errors"
	"newswire-api/engine"
)

// DefaultMaxSources caps the sources named in one request when SourcePolicy leaves it unset
const DefaultMaxSources = 50

// SourcePolicy controls which source URLs clients may name
type SourcePolicy struct {
	// AllowUnregistered accepts any absolute http(s) URL instead of only registered sources
	AllowUnregistered bool

	// MaxSources caps the sources named in one request
	MaxSources int
}

type sourceLister interface {
	Sources() []engine.Source
}

// check rejects malformed, too many or unregistered sources.
// An empty list is allowed and means every registered source.
func (p SourcePolicy) check(e sourceLister, sources []string) error {
	if err := engine.ValidateSources(sources); err != nil {
		return err
	}

	limit := p.MaxSources
	if limit <= 0 {
		limit = DefaultMaxSources
	}
	if len(sources) > limit {
		return &coreerrors.ValidationError{
			Field:   "sources",
			Message: fmt.Sprintf("at most %d sources per request", limit),
		}
	}

	if p.AllowUnregistered || len(sources) == 0 {
		return nil
	}

	registered := make(map[string]struct{})
	for _, s := range e.Sources() {
		registered[s.URL] = struct{}{}
	}
	for _, s := range sources {
		if _, ok := registered[s]; !ok {
			return engine.NewError(engine.ErrorTypeValidation, "source is not registered").
				WithContext("source", s)
		}
	}
	return nil
}
