package news

import (
	"context"
	"sync"
	"time"

	"newswire-api/core/domain"
)

// mockFetcher is a function-field Fetcher
type mockFetcher struct {
	FetchFunc func(ctx context.Context, url string) domain.FetchResult
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) domain.FetchResult {
	return m.FetchFunc(ctx, url)
}

// mockExtractor is a function-field Extractor
type mockExtractor struct {
	calls       int
	ExtractFunc func(payload, pageURL string) domain.Extraction
}

func (m *mockExtractor) Extract(payload, pageURL string) domain.Extraction {
	m.calls++
	return m.ExtractFunc(payload, pageURL)
}

type stubOwners map[string]string

func (s stubOwners) Owner(pageURL string) string {
	return s[pageURL]
}

type stubSources []string

func (s stubSources) Sources() []string {
	return append([]string(nil), s...)
}

// mockPipeline counts calls per URL
type mockPipeline struct {
	mu          sync.Mutex
	calls       map[string]int
	ProcessFunc func(ctx context.Context, url string) domain.FetchResult
}

func newMockPipeline(fn func(ctx context.Context, url string) domain.FetchResult) *mockPipeline {
	return &mockPipeline{calls: map[string]int{}, ProcessFunc: fn}
}

func (m *mockPipeline) Process(ctx context.Context, url string) domain.FetchResult {
	m.mu.Lock()
	m.calls[url]++
	m.mu.Unlock()
	return m.ProcessFunc(ctx, url)
}

func (m *mockPipeline) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

func (m *mockPipeline) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// mockResultCache keeps entries with their store time and applies a TTL
// against an adjustable clock
type mockResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   time.Time
	entries map[string]mockEntry
	puts    int
}

type mockEntry struct {
	result   domain.FetchResult
	storedAt time.Time
}

func newMockResultCache(ttl time.Duration) *mockResultCache {
	return &mockResultCache{
		ttl:     ttl,
		clock:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		entries: map[string]mockEntry{},
	}
}

func (m *mockResultCache) Get(ctx context.Context, url string) (domain.FetchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[url]
	if !ok || m.clock.Sub(e.storedAt) >= m.ttl {
		return domain.FetchResult{}, false
	}
	out := e.result.Clone()
	out.FromCache = domain.TierMemory
	return out, true
}

func (m *mockResultCache) Put(ctx context.Context, url string, result domain.FetchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.entries[url] = mockEntry{result: result.Clone(), storedAt: m.clock}
}

func (m *mockResultCache) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(d)
}

func (m *mockResultCache) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
