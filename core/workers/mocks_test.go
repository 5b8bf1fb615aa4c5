package workers

import (
	"context"
	"sync"
	"time"

	"newswire-api/core/domain"
	"newswire-api/core/interfaces"
)

// mockPipeline blocks every job on release and tracks peak concurrency
type mockPipeline struct {
	mu          sync.Mutex
	active      int
	peak        int
	calls       map[string]int
	started     chan string
	release     chan struct{}
	ProcessFunc func(ctx context.Context, url string) domain.FetchResult
}

func newMockPipeline() *mockPipeline {
	return &mockPipeline{
		calls:   map[string]int{},
		started: make(chan string, 100),
		release: make(chan struct{}),
	}
}

func (m *mockPipeline) Process(ctx context.Context, url string) domain.FetchResult {
	m.mu.Lock()
	m.active++
	if m.active > m.peak {
		m.peak = m.active
	}
	m.calls[url]++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	m.started <- url

	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, url)
	}

	select {
	case <-m.release:
	case <-ctx.Done():
		return domain.NewErrorResult(url, 0, ctx.Err(), time.Now())
	}
	return domain.FetchResult{URL: url, Status: domain.StatusSuccess, StatusCode: 200, Title: "ok", Timestamp: time.Now()}
}

func (m *mockPipeline) Peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

func (m *mockPipeline) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

// mockResultCache records every Put
type mockResultCache struct {
	mu   sync.Mutex
	puts map[string]domain.FetchResult
}

func newMockResultCache() *mockResultCache {
	return &mockResultCache{puts: map[string]domain.FetchResult{}}
}

func (m *mockResultCache) Get(ctx context.Context, url string) (domain.FetchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.puts[url]
	return r, ok
}

func (m *mockResultCache) Put(ctx context.Context, url string, result domain.FetchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts[url] = result
}

var _ interfaces.ResultCache = (*mockResultCache)(nil)
