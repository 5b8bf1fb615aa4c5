package handlers

import (
	"context"
	"time"

	"newswire-api/core/domain"
	"newswire-api/engine"
)

// mockEngine is a function-field implementation of every engine interface the handlers use
type mockEngine struct {
	getAllNewsFunc  func(ctx context.Context, sources []string, opts ...engine.RequestOption) []engine.Result
	fetchAllFunc    func(ctx context.Context, sources []string) []engine.Result
	refreshFunc     func(sources []string) (int, error)
	queueStatusFunc func() engine.QueueStatus
	sourcesFunc     func() []engine.Source
	archiveFunc     func(ctx context.Context, sources []string) (string, error)
	archivesFunc    func() ([]engine.ArchiveEntry, error)
	readArchiveFunc func(name string) ([]byte, error)
	jobsFunc        func() []engine.ScheduledJob
}

func (m *mockEngine) GetAllNews(ctx context.Context, sources []string, opts ...engine.RequestOption) []engine.Result {
	if m.getAllNewsFunc != nil {
		return m.getAllNewsFunc(ctx, sources, opts...)
	}
	return nil
}

func (m *mockEngine) FetchAll(ctx context.Context, sources []string) []engine.Result {
	if m.fetchAllFunc != nil {
		return m.fetchAllFunc(ctx, sources)
	}
	return nil
}

func (m *mockEngine) RefreshInBackground(sources []string) (int, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(sources)
	}
	return 0, nil
}

func (m *mockEngine) QueueStatus() engine.QueueStatus {
	if m.queueStatusFunc != nil {
		return m.queueStatusFunc()
	}
	return engine.QueueStatus{}
}

func (m *mockEngine) Sources() []engine.Source {
	if m.sourcesFunc != nil {
		return m.sourcesFunc()
	}
	return registeredSources
}

func (m *mockEngine) Archive(ctx context.Context, sources []string) (string, error) {
	if m.archiveFunc != nil {
		return m.archiveFunc(ctx, sources)
	}
	return "", nil
}

func (m *mockEngine) Archives() ([]engine.ArchiveEntry, error) {
	if m.archivesFunc != nil {
		return m.archivesFunc()
	}
	return nil, nil
}

func (m *mockEngine) ReadArchive(name string) ([]byte, error) {
	if m.readArchiveFunc != nil {
		return m.readArchiveFunc(name)
	}
	return nil, nil
}

func (m *mockEngine) Jobs() []engine.ScheduledJob {
	if m.jobsFunc != nil {
		return m.jobsFunc()
	}
	return nil
}

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// registeredSources is what mockEngine reports unless sourcesFunc is set
var registeredSources = []engine.Source{
	{URL: "https://a.example"},
	{URL: "https://b.example"},
	{URL: "https://a.example/news"},
}

func successResult(url string) engine.Result {
	return engine.Result{
		URL:        url,
		Status:     domain.StatusSuccess,
		StatusCode: 200,
		Timestamp:  fixedTime,
		Title:      "Front page",
		Links:      []engine.Link{{URL: url + "/a", Title: "A"}},
		Articles:   []engine.Article{},
	}
}

func errorResult(url string) engine.Result {
	return domain.NewErrorResult(url, 404, nil, fixedTime)
}
