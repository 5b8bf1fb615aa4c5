package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	mu   sync.Mutex
	logs []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func (m *MockLogger) record(level, msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields map[string]interface{})  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields map[string]interface{})  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields map[string]interface{}) { m.record("ERROR", msg, fields) }

func TestRequestLoggingMiddleware_LogsRequestMethodAndPath(t *testing.T) {
	logger := &MockLogger{}
	middleware := RequestLoggingMiddleware(logger)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/news?mode=sync", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Len(t, logger.logs, 2)

	startLog := logger.logs[0]
	assert.Equal(t, "INFO", startLog.Level)
	assert.Equal(t, "Request started", startLog.Message)
	assert.Equal(t, "POST", startLog.Fields["method"])
	assert.Equal(t, "/news", startLog.Fields["path"])
	assert.NotEmpty(t, startLog.Fields["request_id"])

	completeLog := logger.logs[1]
	assert.Equal(t, "INFO", completeLog.Level)
	assert.Equal(t, "Request completed", completeLog.Message)
	assert.Equal(t, http.StatusOK, completeLog.Fields["status"])
	assert.NotNil(t, completeLog.Fields["duration_ms"])
}

func TestRequestLoggingMiddleware_LogsResponseStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		responseStatus int
		expectedLogs   int
		expectError    bool
	}{
		{"200 OK", http.StatusOK, 2, false},
		{"404 Not Found", http.StatusNotFound, 2, false},
		{"500 Internal Server Error", http.StatusInternalServerError, 3, true},
		{"503 Service Unavailable", http.StatusServiceUnavailable, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &MockLogger{}
			middleware := RequestLoggingMiddleware(logger)

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.responseStatus)
			}))

			req := httptest.NewRequest("GET", "/news", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Len(t, logger.logs, tt.expectedLogs)
			assert.Equal(t, tt.responseStatus, logger.logs[1].Fields["status"])

			if tt.expectError {
				errorLog := logger.logs[2]
				assert.Equal(t, "ERROR", errorLog.Level)
				assert.Contains(t, errorLog.Message, "server error")
			}
		})
	}
}

func TestRequestLoggingMiddleware_IncludesRequestID(t *testing.T) {
	logger := &MockLogger{}

	var fromContext string
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/news", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	headerID := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, headerID)
	assert.Equal(t, headerID, fromContext)
	assert.Equal(t, headerID, logger.logs[0].Fields["request_id"])
	assert.Equal(t, headerID, logger.logs[1].Fields["request_id"])
}

func TestRequestLoggingMiddleware_ReusesIncomingRequestID(t *testing.T) {
	logger := &MockLogger{}
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	const incoming = "0b8f4a52-6c1e-4f55-9a8d-3f1c2b7d9e10"

	req := httptest.NewRequest("GET", "/news", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	// Garbage IDs are replaced
	req = httptest.NewRequest("GET", "/news", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\n")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid\n", rec.Header().Get(RequestIDHeader))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
