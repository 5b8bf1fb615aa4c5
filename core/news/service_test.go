package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newswire-api/core/domain"
	"newswire-api/core/extract"
	"newswire-api/core/fetch"
	"newswire-api/core/registry"
	"newswire-api/core/workers"
	"newswire-api/infrastructure/http/standard"
)

func okResult(url string) domain.FetchResult {
	return domain.FetchResult{
		URL:        url,
		Status:     domain.StatusSuccess,
		StatusCode: 200,
		Timestamp:  time.Now(),
		Title:      "Title for " + url,
		Links:      []domain.Link{},
		Articles:   []domain.Article{},
	}
}

type testEnv struct {
	service  *Service
	queue    *workers.TaskQueue
	cache    *mockResultCache
	pipeline *mockPipeline
}

func newTestEnv(t *testing.T, ttl time.Duration, process func(ctx context.Context, url string) domain.FetchResult) *testEnv {
	t.Helper()
	cache := newMockResultCache(ttl)
	pipeline := newMockPipeline(process)

	config := workers.DefaultQueueConfig()
	config.Retention = time.Nanosecond
	config.SweepInterval = time.Hour
	queue := workers.NewTaskQueue(pipeline, cache, nil, config)
	if err := queue.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = queue.Stop(ctx)
	})

	service := NewService(cache, queue, pipeline, stubSources{"https://a.example", "https://b.example"}, nil, Config{})
	return &testEnv{service: service, queue: queue, cache: cache, pipeline: pipeline}
}

func (e *testEnv) waitIdle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := e.queue.Status()
		if s.Pending == 0 && s.Processing == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("queue did not go idle: %+v", e.queue.Status())
}

func TestService_GetAllNews_PendingThenFinal(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		return okResult(url)
	})
	sources := []string{"https://a.example"}

	first := env.service.GetAllNews(context.Background(), sources)
	if len(first) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(first))
	}
	if first[0].Status != domain.StatusPending || first[0].StatusCode != 202 || first[0].Title != "Loading..." {
		t.Errorf("first result = %+v, want placeholder", first[0])
	}

	env.waitIdle(t)

	second := env.service.GetAllNews(context.Background(), sources)
	if second[0].Status != domain.StatusSuccess {
		t.Errorf("second result status = %s, want success", second[0].Status)
	}
	if second[0].Title != "Title for https://a.example" {
		t.Errorf("second result title = %q", second[0].Title)
	}
}

func TestService_GetAllNews_DoesNotWaitOnNetwork(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return okResult(url)
	})

	start := time.Now()
	results := env.service.GetAllNews(context.Background(), []string{"https://a.example", "https://b.example"})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("GetAllNews took %v with blocked sources", elapsed)
	}
	for _, r := range results {
		if r.Status != domain.StatusPending {
			t.Errorf("%s status = %s, want pending", r.URL, r.Status)
		}
	}

	// a second call while in flight must not schedule again
	env.service.GetAllNews(context.Background(), []string{"https://a.example"})
	if s := env.queue.Status(); s.Total != 2 {
		t.Errorf("queue Total = %d, want 2", s.Total)
	}
}

func TestService_GetAllNews_CacheHitSkipsFetch(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		return okResult(url)
	})
	env.cache.Put(context.Background(), "https://a.example", okResult("https://a.example"))

	results := env.service.GetAllNews(context.Background(), []string{"https://a.example"})

	if results[0].Status != domain.StatusSuccess || results[0].FromCache == "" {
		t.Errorf("result = %+v, want cached success", results[0])
	}
	if n := env.pipeline.Total(); n != 0 {
		t.Errorf("pipeline calls = %d, want 0", n)
	}
	if s := env.queue.Status(); s.Total != 0 {
		t.Errorf("queue Total = %d, want 0", s.Total)
	}
}

func TestService_GetAllNews_SameTimestampWithinTTL(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		return okResult(url)
	})
	sources := []string{"https://a.example"}

	env.service.GetAllNews(context.Background(), sources)
	env.waitIdle(t)

	first := env.service.GetAllNews(context.Background(), sources)
	env.cache.Advance(30 * time.Minute)
	second := env.service.GetAllNews(context.Background(), sources)

	if !first[0].Timestamp.Equal(second[0].Timestamp) {
		t.Errorf("timestamps differ within TTL: %v vs %v", first[0].Timestamp, second[0].Timestamp)
	}
	if n := env.pipeline.Calls("https://a.example"); n != 1 {
		t.Errorf("pipeline calls = %d, want 1", n)
	}
}

func TestService_GetAllNews_RefetchOnceAfterTTL(t *testing.T) {
	block := make(chan struct{})
	var calls atomic.Int32
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		if calls.Add(1) > 1 {
			<-block
		}
		return okResult(url)
	})
	sources := []string{"https://a.example"}

	env.service.GetAllNews(context.Background(), sources)
	env.waitIdle(t)
	env.queue.Sweep()

	env.cache.Advance(time.Hour + time.Second)

	// several callers arrive while the refetch is still running
	for i := 0; i < 5; i++ {
		r := env.service.GetAllNews(context.Background(), sources)
		if r[0].Status != domain.StatusPending {
			t.Errorf("call %d status = %s, want pending", i, r[0].Status)
		}
	}
	close(block)
	env.waitIdle(t)

	if n := env.pipeline.Calls("https://a.example"); n != 2 {
		t.Errorf("pipeline calls = %d, want 2", n)
	}
}

func TestService_GetAllNews_TerminalTaskResult(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		return domain.NewErrorResult(url, 404, errors.New("GET: 404 Not Found"), time.Now())
	})
	sources := []string{"https://a.example"}

	env.service.GetAllNews(context.Background(), sources)
	env.waitIdle(t)

	// the error result is cached too, so make the cache miss to reach the task
	env.cache.Advance(2 * time.Hour)
	results := env.service.GetAllNews(context.Background(), sources)

	if results[0].Status != domain.StatusError || results[0].StatusCode != 404 {
		t.Errorf("result = %+v, want stored 404 error", results[0])
	}
	if n := env.pipeline.Calls("https://a.example"); n != 1 {
		t.Errorf("pipeline calls = %d, want 1", n)
	}
}

func TestService_GetAllNews_EmptyMeansRegistered(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		return okResult(url)
	})

	results := env.service.GetAllNews(context.Background(), nil)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].URL != "https://a.example" || results[1].URL != "https://b.example" {
		t.Errorf("results out of order: %s, %s", results[0].URL, results[1].URL)
	}
}

func TestService_GetAllNews_ForceRefresh(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		return okResult(url)
	})
	sources := []string{"https://a.example"}

	env.service.GetAllNews(context.Background(), sources)
	env.waitIdle(t)

	results := env.service.GetAllNews(context.Background(), sources, WithForceRefresh())
	if results[0].Status != domain.StatusSuccess {
		t.Errorf("forced call status = %s, want cached success", results[0].Status)
	}
	env.waitIdle(t)

	if n := env.pipeline.Calls("https://a.example"); n != 2 {
		t.Errorf("pipeline calls = %d, want 2", n)
	}
}

func TestService_RefreshInBackground(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		return okResult(url)
	})

	created, err := env.service.RefreshInBackground(nil)
	if err != nil {
		t.Fatalf("RefreshInBackground() error = %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	env.waitIdle(t)

	if s := env.service.QueueStatus(); s.Completed != 2 {
		t.Errorf("QueueStatus() = %+v, want 2 completed", s)
	}
}

func TestService_RefreshInBackground_NotRunning(t *testing.T) {
	cache := newMockResultCache(time.Hour)
	pipeline := newMockPipeline(func(ctx context.Context, url string) domain.FetchResult { return okResult(url) })
	queue := workers.NewTaskQueue(pipeline, cache, nil, workers.DefaultQueueConfig())
	service := NewService(cache, queue, pipeline, nil, nil, Config{})

	_, err := service.RefreshInBackground([]string{"https://a.example"})
	if !errors.Is(err, workers.ErrWorkerNotRunning) {
		t.Errorf("error = %v, want ErrWorkerNotRunning", err)
	}
}

func TestService_FetchAll_OrderAndCache(t *testing.T) {
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		// later sources finish first
		if url == "https://s0.example" {
			time.Sleep(20 * time.Millisecond)
		}
		return okResult(url)
	})

	var sources []string
	for i := 0; i < 8; i++ {
		sources = append(sources, fmt.Sprintf("https://s%d.example", i))
	}
	env.cache.Put(context.Background(), "https://s3.example", okResult("https://s3.example"))

	results := env.service.FetchAll(context.Background(), sources)

	if len(results) != len(sources) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(sources))
	}
	for i, r := range results {
		if r.URL != sources[i] {
			t.Errorf("results[%d].URL = %s, want %s", i, r.URL, sources[i])
		}
	}
	if n := env.pipeline.Calls("https://s3.example"); n != 0 {
		t.Errorf("cached source fetched %d times", n)
	}
	if results[3].FromCache == "" {
		t.Error("cached source not marked FromCache")
	}
	if n := env.pipeline.Total(); n != 7 {
		t.Errorf("pipeline calls = %d, want 7", n)
	}
}

func TestService_FetchAll_ConcurrencyLimit(t *testing.T) {
	var active, peak atomic.Int32
	env := newTestEnv(t, time.Hour, func(ctx context.Context, url string) domain.FetchResult {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return okResult(url)
	})
	env.service.config.SyncConcurrency = 2

	var sources []string
	for i := 0; i < 6; i++ {
		sources = append(sources, fmt.Sprintf("https://s%d.example", i))
	}
	env.service.FetchAll(context.Background(), sources)

	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

// End to end through the real fetcher and extractor: one of three sources 404s.
func TestService_FetchAll_IsolatesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title>Page %s</title></head><body>
<article><h2><a href="/story">Story</a></h2><p>Summary</p></article>
</body></html>`, r.URL.Path)
	}))
	defer server.Close()

	client, err := standard.NewStandardHTTPClient(2 * time.Second)
	if err != nil {
		t.Fatalf("NewStandardHTTPClient() error = %v", err)
	}
	opts := fetch.DefaultOptions()
	opts.RetryBaseDelay = time.Millisecond
	fetcher := fetch.NewFetcher(client, nil, opts)
	reg := registry.New(registry.GenericRules)
	extractor := extract.NewExtractor(reg, nil, extract.Options{DisableReadability: true})
	pipeline := NewPipeline(fetcher, extractor, reg, nil, PipelineOptions{})
	cache := newMockResultCache(time.Hour)

	config := workers.DefaultQueueConfig()
	queue := workers.NewTaskQueue(pipeline, cache, nil, config)
	service := NewService(cache, queue, pipeline, nil, nil, Config{})

	sources := []string{server.URL + "/one", server.URL + "/missing", server.URL + "/two"}
	results := service.FetchAll(context.Background(), sources)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Status != domain.StatusSuccess || results[2].Status != domain.StatusSuccess {
		t.Errorf("statuses = %s, %s; want success", results[0].Status, results[2].Status)
	}
	if results[1].Status != domain.StatusError || results[1].StatusCode != 404 {
		t.Errorf("results[1] = %+v, want error 404", results[1])
	}
	if results[0].Title != "Page /one" {
		t.Errorf("results[0].Title = %q", results[0].Title)
	}
	if len(results[0].Articles) != 1 || results[0].Articles[0].URL != server.URL+"/story" {
		t.Errorf("results[0].Articles = %+v", results[0].Articles)
	}
	if got := len(FilterSuccessful(results)); got != 2 {
		t.Errorf("FilterSuccessful() kept %d, want 2", got)
	}
}

func TestFilterSuccessful(t *testing.T) {
	results := []domain.FetchResult{
		{URL: "a", Status: domain.StatusSuccess},
		{URL: "b", Status: domain.StatusError},
		{URL: "c", Status: domain.StatusPending},
		{URL: "d", Status: domain.StatusSuccess},
	}

	got := FilterSuccessful(results)

	if len(got) != 2 || got[0].URL != "a" || got[1].URL != "d" {
		t.Errorf("FilterSuccessful() = %+v", got)
	}
	if got := FilterSuccessful(nil); got == nil || len(got) != 0 {
		t.Errorf("FilterSuccessful(nil) = %v, want empty slice", got)
	}
}
