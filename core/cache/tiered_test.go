package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"newswire-api/core/domain"
	"newswire-api/infrastructure/cache/file"
	"newswire-api/infrastructure/cache/memory"
)

const sourceURL = "https://www.who.int/news-room"

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)}
}

func successResult(title string) domain.FetchResult {
	return domain.FetchResult{
		URL:        sourceURL,
		Status:     domain.StatusSuccess,
		StatusCode: 200,
		Timestamp:  time.Date(2026, 4, 2, 8, 59, 0, 0, time.UTC),
		Title:      title,
		Links:      []domain.Link{{URL: sourceURL + "/a", Title: "A"}},
	}
}

func newTestCache(t *testing.T, opts Options) (*TieredCache, *file.Store, *clock) {
	t.Helper()
	store, err := file.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewTieredCache(memory.NewMemoryCache(0), store, nil, opts)
	clk := newClock()
	c.now = clk.now
	return c, store, clk
}

func TestTieredCache_PutGet_Memory(t *testing.T) {
	c, _, _ := newTestCache(t, Options{TTL: time.Hour})
	ctx := context.Background()

	c.Put(ctx, sourceURL, successResult("WHO"))

	got, ok := c.Get(ctx, sourceURL)
	if !ok {
		t.Fatal("Get should hit after Put")
	}
	if got.FromCache != domain.TierMemory {
		t.Errorf("FromCache = %v, want memory", got.FromCache)
	}
	if got.Title != "WHO" || len(got.Links) != 1 {
		t.Errorf("Get = %+v", got)
	}
	if got.Articles == nil {
		t.Error("Articles should be normalized to an empty slice")
	}
	if !got.Timestamp.Equal(successResult("").Timestamp) {
		t.Errorf("Timestamp = %v, want the fetch timestamp", got.Timestamp)
	}
}

func TestTieredCache_Get_Miss(t *testing.T) {
	c, _, _ := newTestCache(t, Options{TTL: time.Hour})

	if _, ok := c.Get(context.Background(), sourceURL); ok {
		t.Error("Get should miss on an empty cache")
	}
}

func TestTieredCache_Get_StaleIsIgnoredNotDeleted(t *testing.T) {
	c, store, clk := newTestCache(t, Options{TTL: time.Hour})
	ctx := context.Background()

	c.Put(ctx, sourceURL, successResult("WHO"))
	clk.advance(time.Hour)

	if _, ok := c.Get(ctx, sourceURL); ok {
		t.Error("Get should miss once now - storedAt >= TTL")
	}
	if _, err := store.Get(ctx, sourceURL); err != nil {
		t.Errorf("stale entry should remain on disk, got %v", err)
	}
}

func TestTieredCache_Get_PromotesFromFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, _ := file.NewStore(dir)
	clk := newClock()

	first := NewTieredCache(memory.NewMemoryCache(0), store, nil, Options{TTL: time.Hour})
	first.now = clk.now
	first.Put(ctx, sourceURL, successResult("WHO"))

	// a new process: empty memory tier, same directory
	mem := memory.NewMemoryCache(0)
	second := NewTieredCache(mem, store, nil, Options{TTL: time.Hour})
	second.now = clk.now
	clk.advance(10 * time.Minute)

	got, ok := second.Get(ctx, sourceURL)
	if !ok || got.FromCache != domain.TierFile {
		t.Fatalf("Get = %v/%v, want hit from file", got.FromCache, ok)
	}

	got, ok = second.Get(ctx, sourceURL)
	if !ok || got.FromCache != domain.TierMemory {
		t.Fatalf("second Get = %v/%v, want hit from memory after promotion", got.FromCache, ok)
	}

	// promotion keeps the original storedAt
	clk.advance(50 * time.Minute)
	if _, ok := second.Get(ctx, sourceURL); ok {
		t.Error("promoted entry should go stale with its original storedAt")
	}
}

func TestTieredCache_Put_StoreFailureIsSwallowed(t *testing.T) {
	mem := newMockCache()
	store := newMockCache()
	store.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		return errors.New("disk full")
	}
	logger := &mockLogger{}
	c := NewTieredCache(mem, store, logger, Options{TTL: time.Hour})

	c.Put(context.Background(), sourceURL, successResult("WHO"))

	if _, ok := c.Get(context.Background(), sourceURL); !ok {
		t.Error("memory tier should still serve the entry")
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %v, want one", logger.warns)
	}
}

func TestTieredCache_Get_CorruptEntryIsMiss(t *testing.T) {
	mem := newMockCache()
	mem.data[sourceURL] = []byte("{not json")
	c := NewTieredCache(mem, nil, &mockLogger{}, Options{TTL: time.Hour})

	if _, ok := c.Get(context.Background(), sourceURL); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func TestTieredCache_Get_NormalizesDecodedEntries(t *testing.T) {
	mem := newMockCache()
	c := NewTieredCache(mem, nil, nil, Options{TTL: time.Hour})
	clk := newClock()
	c.now = clk.now
	mem.data[sourceURL] = []byte(`{"payload":{"url":"` + sourceURL + `","status":"error","links":null},"storedAt":"2026-04-02T09:00:00Z"}`)

	got, ok := c.Get(context.Background(), sourceURL)
	if !ok {
		t.Fatal("Get should hit")
	}
	if got.Links == nil || got.Articles == nil {
		t.Error("decoded entry should have non-nil Links and Articles")
	}
}

func TestTieredCache_MemoryRetention(t *testing.T) {
	mem := newMockCache()
	store := newMockCache()
	c := NewTieredCache(mem, store, nil, Options{TTL: time.Hour, MemoryRetention: 24 * time.Hour})
	clk := newClock()
	c.now = clk.now

	c.Put(context.Background(), sourceURL, successResult("WHO"))

	if mem.ttls[sourceURL] != 24*time.Hour {
		t.Errorf("memory ttl = %v, want 24h", mem.ttls[sourceURL])
	}
	if store.ttls[sourceURL] != 0 {
		t.Errorf("store ttl = %v, want 0", store.ttls[sourceURL])
	}

	// promotion uses the remaining retention
	delete(mem.data, sourceURL)
	clk.advance(30 * time.Minute)
	c.Get(context.Background(), sourceURL)
	if mem.ttls[sourceURL] != 24*time.Hour-30*time.Minute {
		t.Errorf("promoted ttl = %v, want 23h30m", mem.ttls[sourceURL])
	}
}

func TestTieredCache_Put_ClearsFromCacheTag(t *testing.T) {
	c, _, _ := newTestCache(t, Options{TTL: time.Hour})
	ctx := context.Background()

	res := successResult("WHO")
	res.FromCache = domain.TierFile
	c.Put(ctx, sourceURL, res)

	got, _ := c.Get(ctx, sourceURL)
	if got.FromCache != domain.TierMemory {
		t.Errorf("FromCache = %v, want memory", got.FromCache)
	}
}
