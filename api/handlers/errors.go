// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts engine and domain errors to appropriate HTTP responses

package handlers

import (
	"errors"
	"net/http"

	coreerrors "newswire-api/core/errors"
	"newswire-api/engine"
)

// toHTTPError maps err to a status code and a client-safe message
func toHTTPError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var engErr *engine.Error
	if !errors.As(err, &engErr) {
		switch {
		case coreerrors.IsValidation(err):
			return http.StatusBadRequest, err.Error()
		case coreerrors.IsNotFound(err):
			return http.StatusNotFound, err.Error()
		default:
			return http.StatusInternalServerError, "Internal server error"
		}
	}

	switch engErr.Type {
	case engine.ErrorTypeValidation:
		if src, ok := engErr.Context["source"].(string); ok {
			return http.StatusBadRequest, engErr.Message + ": " + src
		}
		return http.StatusBadRequest, engErr.Message
	case engine.ErrorTypeNotFound:
		return http.StatusNotFound, engErr.Message
	case engine.ErrorTypeUnavailable, engine.ErrorTypeConfiguration:
		return http.StatusServiceUnavailable, engErr.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, message := toHTTPError(err)
	writeFailure(w, status, message)
}
