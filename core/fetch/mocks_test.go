package fetch

import (
	"context"
	"io"
	"strings"
	"sync"

	"newswire-api/core/interfaces"
)

// mockHTTPClient is a mock implementation of HTTPClient
type mockHTTPClient struct {
	mu      sync.Mutex
	calls   int
	headers []map[string]string
	GetFunc func(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
	m.mu.Lock()
	m.calls++
	m.headers = append(m.headers, headers)
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, url, headers)
	}
	return newMockResponse(200, "", "ok"), nil
}

func (m *mockHTTPClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockResponse is a mock implementation of Response
type mockResponse struct {
	statusCode  int
	contentType string
	body        io.ReadCloser
}

func newMockResponse(code int, contentType, body string) *mockResponse {
	return &mockResponse{
		statusCode:  code,
		contentType: contentType,
		body:        io.NopCloser(strings.NewReader(body)),
	}
}

func (r *mockResponse) StatusCode() int     { return r.statusCode }
func (r *mockResponse) Body() io.ReadCloser { return r.body }
func (r *mockResponse) Header(key string) string {
	if strings.EqualFold(key, "Content-Type") {
		return r.contentType
	}
	return ""
}
