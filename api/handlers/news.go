// ABOUTME: News handlers expose the aggregated per-source results over HTTP
// ABOUTME: Supports background (default) and synchronous modes, refresh and queue status

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	coreerrors "newswire-api/core/errors"
	"newswire-api/engine"
)

// Request modes for /news
const (
	ModeAsync = "async"
	ModeSync  = "sync"
)

// NewsEngine is the part of the engine the news handlers need
type NewsEngine interface {
	GetAllNews(ctx context.Context, sources []string, opts ...engine.RequestOption) []engine.Result
	FetchAll(ctx context.Context, sources []string) []engine.Result
	RefreshInBackground(sources []string) (int, error)
	QueueStatus() engine.QueueStatus
	Sources() []engine.Source
}

// NewsRequest selects sources and mode for /news.
// Query parameters are read first, a POST body overrides them.
type NewsRequest struct {
	Sources     []string `json:"sources"`
	Mode        string   `json:"mode"`
	SuccessOnly bool     `json:"successOnly"`
	Force       bool     `json:"force"`
}

// RefreshResponse reports how many background tasks a refresh created
type RefreshResponse struct {
	Queued int `json:"queued"`
}

// SourceView is a registered source as exposed over HTTP
type SourceView struct {
	URL   string         `json:"url"`
	Owner string         `json:"owner"`
	Rules engine.RuleSet `json:"rules"`
}

// NewsHandler handles /news and /sources
type NewsHandler struct {
	engine NewsEngine
	policy SourcePolicy
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(e NewsEngine, policy SourcePolicy) *NewsHandler {
	return &NewsHandler{engine: e, policy: policy}
}

// RegisterRoutes registers news routes
func (h *NewsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/news", h.GetNews)
	r.Post("/news", h.GetNews)
	r.Post("/news/refresh", h.Refresh)
	r.Get("/news/queue", h.Queue)
	r.Get("/sources", h.ListSources)
}

// GetNews returns one result per requested source
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	req, err := parseNewsRequest(r)
	if err == nil && r.Method == http.MethodPost {
		err = decodeBody(w, r, &req)
	}
	if err == nil {
		err = validateNewsRequest(req)
	}
	if err == nil {
		err = h.policy.check(h.engine, req.Sources)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	var results []engine.Result
	if req.Mode == ModeSync {
		results = h.engine.FetchAll(r.Context(), req.Sources)
	} else {
		var opts []engine.RequestOption
		if req.Force {
			opts = append(opts, engine.WithForceRefresh())
		}
		results = h.engine.GetAllNews(r.Context(), req.Sources, opts...)
	}

	if req.SuccessOnly {
		results = engine.FilterSuccessful(results)
	}
	if results == nil {
		results = []engine.Result{}
	}

	writeJSON(w, http.StatusOK, results)
}

// Refresh force-queues every requested source and answers 202
func (h *NewsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body SourcesBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.policy.check(h.engine, body.Sources); err != nil {
		writeError(w, err)
		return
	}

	queued, err := h.engine.RefreshInBackground(body.Sources)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, RefreshResponse{Queued: queued})
}

// Queue reports background task counts
func (h *NewsHandler) Queue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.QueueStatus())
}

// ListSources lists the registered sources
func (h *NewsHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources := h.engine.Sources()
	views := make([]SourceView, 0, len(sources))
	for _, s := range sources {
		views = append(views, SourceView{URL: s.URL, Owner: s.Owner, Rules: s.Rules})
	}
	writeJSON(w, http.StatusOK, views)
}

func parseNewsRequest(r *http.Request) (NewsRequest, error) {
	q := r.URL.Query()
	req := NewsRequest{
		Sources: q["sources"],
		Mode:    q.Get("mode"),
	}

	var err error
	if req.SuccessOnly, err = parseBoolParam(q.Get("successOnly"), "successOnly"); err != nil {
		return req, err
	}
	if req.Force, err = parseBoolParam(q.Get("force"), "force"); err != nil {
		return req, err
	}
	return req, nil
}

func parseBoolParam(value, name string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &coreerrors.ValidationError{Field: name, Message: "must be a boolean"}
	}
	return b, nil
}

func validateNewsRequest(req NewsRequest) error {
	switch req.Mode {
	case "", ModeAsync, ModeSync:
	default:
		return &coreerrors.ValidationError{Field: "mode", Message: "must be async or sync"}
	}
	return nil
}
