package handler

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeRetryable writes a JSON error response that callers may retry.
func writeRetryable(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Retry-After", "5")
	writeJSON(w, status, map[string]interface{}{
		"error":     message,
		"retryable": true,
	})
}
