// ABOUTME: Main client for the newswire engine wiring fetch, cache, extraction and the task queue
// ABOUTME: Offers a clean API for using core functionality without HTTP dependencies

package engine

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"time"

	"newswire-api/core/archive"
	"newswire-api/core/cache"
	coreerrors "newswire-api/core/errors"
	"newswire-api/core/extract"
	"newswire-api/core/fetch"
	"newswire-api/core/interfaces"
	"newswire-api/core/news"
	"newswire-api/core/registry"
	"newswire-api/core/scheduler"
	"newswire-api/core/workers"
)

// Job names used by the scheduler
const (
	JobRefresh = "refresh"
	JobArchive = "archive"
)

// Client is the main entry point for the engine
type Client struct {
	news      *news.Service
	queue     *workers.TaskQueue
	registry  *registry.Registry
	archiver  *archive.Archiver
	scheduler *scheduler.Scheduler
	logger    interfaces.Logger
	config    Config

	mu     sync.Mutex
	closed bool
}

// NewClient creates a new client with the given options and starts the
// background queue (and the scheduler when a cron expression is set)
func NewClient(options ...Option) (*Client, error) {
	// Start with default config
	config := defaultConfig()

	// Apply options
	for _, opt := range options {
		if err := opt(&config); err != nil {
			closeAll(config.closers)
			return nil, err
		}
	}

	if err := validateConfig(&config); err != nil {
		closeAll(config.closers)
		return nil, err
	}

	logger := config.Logger
	results := cache.NewTieredCache(config.MemoryCache, config.Store, logger, config.Cache)
	fetcher := fetch.NewFetcher(config.HTTPClient, logger, config.Fetch)
	extractor := extract.NewExtractor(config.Registry, logger, config.Extract)
	pipeline := news.NewPipeline(fetcher, extractor, config.Registry, logger, news.PipelineOptions{
		KeepRaw: config.KeepRawPayload,
	})
	queue := workers.NewTaskQueue(pipeline, results, logger, config.Queue)
	service := news.NewService(results, queue, pipeline, config.Registry, logger, news.Config{
		SyncConcurrency: config.SyncConcurrency,
	})

	client := &Client{
		news:     service,
		queue:    queue,
		registry: config.Registry,
		logger:   logger,
		config:   config,
	}

	if config.ArchiveDir != "" {
		archiver, err := archive.NewArchiver(service, config.ArchiveDir, logger)
		if err != nil {
			closeAll(config.closers)
			return nil, NewError(ErrorTypeConfiguration, "cannot create archive").WithCause(err)
		}
		client.archiver = archiver
	}

	if err := queue.Start(); err != nil {
		closeAll(config.closers)
		return nil, NewError(ErrorTypeInternal, "cannot start task queue").WithCause(err)
	}

	if config.RefreshCron != "" || config.ArchiveCron != "" {
		if err := client.startScheduler(); err != nil {
			_ = queue.Stop(context.Background())
			closeAll(config.closers)
			return nil, err
		}
	}

	logger.Info("Engine started", map[string]interface{}{
		"sources":     len(config.Registry.Sources()),
		"ttl":         config.Cache.TTL.String(),
		"concurrency": config.Queue.ConcurrencyLimit,
		"persistent":  config.Store != nil,
	})
	return client, nil
}

func (c *Client) startScheduler() error {
	s := scheduler.New(c.logger, nil)

	if err := s.Add(JobRefresh, c.config.RefreshCron, func(ctx context.Context) {
		if _, err := c.RefreshInBackground(nil); err != nil {
			c.logger.Warn("Scheduled refresh failed", map[string]interface{}{"error": err.Error()})
		}
	}); err != nil {
		return NewError(ErrorTypeConfiguration, "invalid refresh schedule").WithCause(err)
	}

	if c.archiver != nil {
		if err := s.Add(JobArchive, c.config.ArchiveCron, func(ctx context.Context) {
			if _, err := c.archiver.Archive(ctx, nil); err != nil {
				c.logger.Error("Scheduled archive failed", map[string]interface{}{"error": err.Error()})
			}
		}); err != nil {
			return NewError(ErrorTypeConfiguration, "invalid archive schedule").WithCause(err)
		}
	}

	s.Start()
	c.scheduler = s
	return nil
}

// Close stops the scheduler and the queue, then releases cache resources
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var errs []error
	if c.scheduler != nil {
		errs = append(errs, c.scheduler.Stop(ctx))
	}
	errs = append(errs, c.queue.Stop(ctx))
	errs = append(errs, closeAll(c.config.closers))
	return errors.Join(errs...)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// GetAllNews returns one result per source without waiting on the network.
// Empty sources means every registered source.
func (c *Client) GetAllNews(ctx context.Context, sources []string, opts ...RequestOption) []Result {
	return c.news.GetAllNews(ctx, sources, opts...)
}

// FetchAll waits for every source and returns results in input order
func (c *Client) FetchAll(ctx context.Context, sources []string) []Result {
	return c.news.FetchAll(ctx, sources)
}

// FilterSuccessful keeps only results with status success
func FilterSuccessful(results []Result) []Result {
	return news.FilterSuccessful(results)
}

// RefreshInBackground force-queues every source and returns how many tasks were created
func (c *Client) RefreshInBackground(sources []string) (int, error) {
	if c.isClosed() {
		return 0, ErrClientClosed
	}
	created, err := c.news.RefreshInBackground(sources)
	if err != nil {
		return created, NewError(ErrorTypeUnavailable, "background queue rejected refresh").
			WithCause(err).
			WithContext("created", created)
	}
	return created, nil
}

// QueueStatus reports background task counts
func (c *Client) QueueStatus() QueueStatus {
	return c.news.QueueStatus()
}

// Sources lists registered sources with their resolved rules and owners
func (c *Client) Sources() []Source {
	urls := c.registry.Sources()
	out := make([]Source, 0, len(urls))
	for _, u := range urls {
		out = append(out, c.registry.Source(u))
	}
	return out
}

// Archive writes today's markdown archive and returns its path
func (c *Client) Archive(ctx context.Context, sources []string) (string, error) {
	if c.archiver == nil {
		return "", ErrNoArchive
	}
	path, err := c.archiver.Archive(ctx, sources)
	if err != nil {
		return "", NewError(ErrorTypeInternal, "archive failed").WithCause(err)
	}
	return path, nil
}

// Archives lists archive files newest first
func (c *Client) Archives() ([]ArchiveEntry, error) {
	if c.archiver == nil {
		return nil, ErrNoArchive
	}
	return c.archiver.List()
}

// ReadArchive returns the markdown of one archive file
func (c *Client) ReadArchive(name string) ([]byte, error) {
	if c.archiver == nil {
		return nil, ErrNoArchive
	}
	data, err := c.archiver.Read(name)
	switch {
	case coreerrors.IsValidation(err):
		return nil, NewError(ErrorTypeValidation, "invalid archive name").WithCause(err)
	case coreerrors.IsNotFound(err):
		return nil, NewError(ErrorTypeNotFound, "archive not found").WithCause(err)
	case err != nil:
		return nil, NewError(ErrorTypeInternal, "cannot read archive").WithCause(err)
	}
	return data, nil
}

// Jobs lists scheduled jobs, empty when no schedule is configured
func (c *Client) Jobs() []ScheduledJob {
	if c.scheduler == nil {
		return []ScheduledJob{}
	}
	return c.scheduler.Jobs()
}

// CacheTTL returns the freshness window
func (c *Client) CacheTTL() time.Duration {
	return c.config.Cache.TTL
}

// ValidateSources checks that every entry is an absolute http(s) URL
func ValidateSources(sources []string) error {
	for _, s := range sources {
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewError(ErrorTypeValidation, "source must be an absolute http(s) URL").
				WithContext("source", s)
		}
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.HTTPClient == nil {
		client, err := DefaultHTTPClient(2*config.Fetch.Timeout, "")
		if err != nil {
			return NewError(ErrorTypeConfiguration, "cannot create HTTP client").WithCause(err)
		}
		config.HTTPClient = client
	}
	if config.MemoryCache == nil {
		config.MemoryCache = DefaultMemoryCache()
	}
	if config.Logger == nil {
		config.Logger = interfaces.NopLogger{}
	}
	if config.Registry == nil {
		return NewError(ErrorTypeConfiguration, "registry is required")
	}
	if config.Cache.TTL <= 0 {
		return NewError(ErrorTypeValidation, "cache TTL must be positive")
	}
	return nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
