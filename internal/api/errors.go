// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jamaisvu/jamaisvu/internal/geo"
	"github.com/jamaisvu/jamaisvu/internal/log"
	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes. Unexpected faults
// are logged with detail but surfaced generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recording.ErrUnsupportedMediaType):
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "payload is not audio"})
	case errors.Is(err, geo.ErrUnresolvable):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "location could not be resolved"})
	case errors.Is(err, recording.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
	case errors.Is(err, recording.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str("event", "request.failed").
			Str("path", r.URL.Path).
			Msg("unexpected failure")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
