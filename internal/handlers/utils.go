package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"vidshelf/internal/logging"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONCode writes v with the given status code.
func writeJSONCode(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONCode(w, statusCode, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
