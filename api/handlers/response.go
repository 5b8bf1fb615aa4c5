// ABOUTME: JSON envelope and body helpers shared by every handler
// ABOUTME: Every response is { ok, status, data } or { ok, status, error }

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	coreerrors "newswire-api/core/errors"
)

// maxBodyBytes caps request bodies; requests only ever carry a source list
const maxBodyBytes = 1 << 20

// Envelope wraps every JSON response
type Envelope struct {
	OK     bool        `json:"ok"`
	Status int         `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SourcesBody is the optional body of refresh and archive requests
type SourcesBody struct {
	Sources []string `json:"sources"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		OK:     status < 400,
		Status: status,
		Data:   data,
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		OK:     false,
		Status: status,
		Error:  message,
	})
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &coreerrors.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// NotFound answers unknown routes with a JSON envelope
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusNotFound, "route not found")
}

// MethodNotAllowed answers known routes hit with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
}
