package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes a JSON error body for requests rejected before they
// reach a handler. Rejections are never cacheable.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
