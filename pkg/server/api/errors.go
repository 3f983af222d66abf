package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"

	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

// ErrorResponse represents a standard JSON error response.
//
// Example:
//
//	{
//	  "error": "Not Found",
//	  "message": "blob not found: scan-results/scans/10.0.0.4/2025-09-07T09-20/nmap.xml"
//	}
type ErrorResponse struct {
	Error   string `json:"error"`             // Short error type (e.g., "Not Found", "Bad Gateway")
	Message string `json:"message,omitempty"` // Detailed error message (optional)
}

// StatusFor maps an error to its HTTP status and short error type:
//   - storage.ErrNotFound, service.ErrUnknownTool → 404
//   - storage.ErrInvalidInput → 400
//   - service.ErrUpstream → 502
//   - context.DeadlineExceeded → 504
//   - anything else → 500
func StatusFor(err error) (int, string) {
	switch {
	case storage.IsNotFound(err), errors.Is(err, service.ErrUnknownTool):
		return http.StatusNotFound, "Not Found"
	case storage.IsInvalidInput(err):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Gateway Timeout"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "Bad Gateway"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// WriteError writes a standard JSON error response and logs it. Client
// errors are logged at debug, server side failures at error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, errorType := StatusFor(err)

	logEvent := log.Error()
	if statusCode < http.StatusInternalServerError {
		logEvent = log.Debug()
	}
	logEvent.
		Str("component", "api").
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", statusCode).
		Err(err).
		Msg("Request failed")

	WriteJSONError(w, statusCode, errorType, err.Error())
}

// WriteJSONError writes a custom JSON error response with a specific status code.
//
// Example:
//
//	WriteJSONError(w, http.StatusBadRequest, "Bad Request", "limit: must be between 1 and 100")
func WriteJSONError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   errorType,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Str("component", "api").
			Err(err).
			Msg("Failed to encode error response")
	}
}

// WriteJSON writes a JSON response to the client.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Str("component", "api").
			Err(err).
			Msg("Failed to encode JSON response")
	}
}

// WriteJSONWithETag writes data with a strong ETag derived from the body.
// A matching If-None-Match answers 304 without a body.
func WriteJSONWithETag(w http.ResponseWriter, r *http.Request, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		WriteError(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	body = append(body, '\n')

	etag := ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ETag returns the quoted xxh3 digest of body.
func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
}
