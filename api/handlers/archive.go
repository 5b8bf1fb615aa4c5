// ABOUTME: Archive handlers list, read and trigger daily markdown snapshots
// ABOUTME: Archive files are served as text/markdown

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"newswire-api/engine"
)

// ArchiveEngine is the part of the engine the archive handlers need
type ArchiveEngine interface {
	Archive(ctx context.Context, sources []string) (string, error)
	Archives() ([]engine.ArchiveEntry, error)
	ReadArchive(name string) ([]byte, error)
	Sources() []engine.Source
}

// ArchiveResponse names the file written by a triggered archive
type ArchiveResponse struct {
	Path string `json:"path"`
}

// ArchiveHandler handles /archives
type ArchiveHandler struct {
	engine ArchiveEngine
	policy SourcePolicy
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(e ArchiveEngine, policy SourcePolicy) *ArchiveHandler {
	return &ArchiveHandler{engine: e, policy: policy}
}

// RegisterRoutes registers archive routes
func (h *ArchiveHandler) RegisterRoutes(r chi.Router) {
	r.Get("/archives", h.List)
	r.Post("/archives/trigger", h.Trigger)
	r.Get("/archives/{name}", h.Read)
}

// List returns archive entries newest first
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.Archives()
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []engine.ArchiveEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Read serves one archive file
func (h *ArchiveHandler) Read(w http.ResponseWriter, r *http.Request) {
	data, err := h.engine.ReadArchive(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Trigger fetches the requested sources synchronously and writes today's archive
func (h *ArchiveHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var body SourcesBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.policy.check(h.engine, body.Sources); err != nil {
		writeError(w, err)
		return
	}

	path, err := h.engine.Archive(r.Context(), body.Sources)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ArchiveResponse{Path: path})
}
