package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"newswire-api/engine"
)

// HealthEngine reports liveness details
type HealthEngine interface {
	QueueStatus() engine.QueueStatus
	Jobs() []engine.ScheduledJob
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status string                `json:"status"`
	Queue  engine.QueueStatus    `json:"queue"`
	Jobs   []engine.ScheduledJob `json:"jobs"`
}

// HealthHandler handles /healthz
type HealthHandler struct {
	engine HealthEngine
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(e HealthEngine) *HealthHandler {
	return &HealthHandler{engine: e}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
}

// Health always answers 200 while the process serves requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	jobs := h.engine.Jobs()
	if jobs == nil {
		jobs = []engine.ScheduledJob{}
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Queue:  h.engine.QueueStatus(),
		Jobs:   jobs,
	})
}
