// ABOUTME: News service answers requests for many sources from cache or the background queue
// ABOUTME: Also provides a synchronous batch mode that waits for every source

package news

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"newswire-api/core/domain"
	"newswire-api/core/interfaces"
	"newswire-api/core/workers"
)

// Queue is the background task queue as seen by the service
type Queue interface {
	Schedule(url string) (bool, error)
	Force(url string) (bool, error)
	Lookup(url string) (domain.Task, bool)
	Status() domain.QueueStatus
}

// SourceLister lists the registered source URLs
type SourceLister interface {
	Sources() []string
}

// Config holds service settings
type Config struct {
	// SyncConcurrency caps in-flight fetches in FetchAll
	SyncConcurrency int
}

// Service is the request-facing orchestrator
type Service struct {
	cache    interfaces.ResultCache
	queue    Queue
	pipeline interfaces.Pipeline
	sources  SourceLister
	logger   interfaces.Logger
	config   Config
	now      func() time.Time
}

// NewService creates a news service
func NewService(cache interfaces.ResultCache, queue Queue, pipeline interfaces.Pipeline, sources SourceLister, logger interfaces.Logger, config Config) *Service {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	if config.SyncConcurrency <= 0 {
		config.SyncConcurrency = 5
	}
	return &Service{
		cache:    cache,
		queue:    queue,
		pipeline: pipeline,
		sources:  sources,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}
}

type requestOptions struct {
	forceRefresh bool
}

// Option configures a single GetAllNews call
type Option func(*requestOptions)

// WithForceRefresh also queues a refetch for sources served from cache
func WithForceRefresh() Option {
	return func(o *requestOptions) {
		o.forceRefresh = true
	}
}

func (s *Service) resolve(sources []string) []string {
	if len(sources) == 0 && s.sources != nil {
		return s.sources.Sources()
	}
	return sources
}

// GetAllNews returns one result per source in input order without waiting
// on the network. Sources with no fresh cache entry and no finished task are
// scheduled and reported as pending placeholders.
func (s *Service) GetAllNews(ctx context.Context, sources []string, opts ...Option) []domain.FetchResult {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	sources = s.resolve(sources)
	results := make([]domain.FetchResult, 0, len(sources))
	for _, url := range sources {
		results = append(results, s.lookup(ctx, url, o))
	}
	return results
}

func (s *Service) lookup(ctx context.Context, url string, o requestOptions) domain.FetchResult {
	if cached, ok := s.cache.Get(ctx, url); ok {
		if o.forceRefresh {
			s.enqueue(url, true)
		}
		return cached
	}

	if task, ok := s.queue.Lookup(url); ok {
		if task.State.IsTerminal() && task.Result != nil {
			return *task.Result
		}
		return domain.NewPendingResult(url, s.now())
	}

	s.enqueue(url, false)
	return domain.NewPendingResult(url, s.now())
}

func (s *Service) enqueue(url string, force bool) bool {
	var (
		created bool
		err     error
	)
	if force {
		created, err = s.queue.Force(url)
	} else {
		created, err = s.queue.Schedule(url)
	}
	if err != nil {
		s.logger.Warn("Failed to schedule source", map[string]interface{}{
			"url":   url,
			"force": force,
			"error": err.Error(),
		})
	}
	return created
}

// RefreshInBackground queues a refetch for every source regardless of
// freshness and returns how many tasks were created.
func (s *Service) RefreshInBackground(sources []string) (int, error) {
	created := 0
	for _, url := range s.resolve(sources) {
		ok, err := s.queue.Force(url)
		if err != nil {
			if errors.Is(err, workers.ErrWorkerNotRunning) || errors.Is(err, workers.ErrQueueFull) {
				return created, err
			}
			continue
		}
		if ok {
			created++
		}
	}

	s.logger.Info("Queued background refresh", map[string]interface{}{
		"created": created,
	})
	return created, nil
}

// QueueStatus reports task counts per state
func (s *Service) QueueStatus() domain.QueueStatus {
	return s.queue.Status()
}

// FetchAll processes every source and waits for all of them. Fresh cache
// entries are reused; everything else is fetched and written back.
func (s *Service) FetchAll(ctx context.Context, sources []string) []domain.FetchResult {
	sources = s.resolve(sources)
	results := make([]domain.FetchResult, len(sources))

	var g errgroup.Group
	g.SetLimit(s.config.SyncConcurrency)

	for i, url := range sources {
		g.Go(func() error {
			if cached, ok := s.cache.Get(ctx, url); ok {
				results[i] = cached
				return nil
			}

			result := s.pipeline.Process(ctx, url)
			if ctx.Err() == nil {
				s.cache.Put(ctx, url, result)
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	success := len(FilterSuccessful(results))
	s.logger.Info("Fetched sources", map[string]interface{}{
		"total":   len(results),
		"success": success,
		"failed":  len(results) - success,
	})
	return results
}

// FilterSuccessful keeps only results with status success
func FilterSuccessful(results []domain.FetchResult) []domain.FetchResult {
	out := make([]domain.FetchResult, 0, len(results))
	for _, r := range results {
		if r.IsSuccess() {
			out = append(out, r)
		}
	}
	return out
}
