// Package httpjson provides the JSON response helpers shared by all API
// handlers. Error payloads use the {"error": "..."} shape the frontend
// expects; absence of a message falls back to the standard status text.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// Respond writes v as JSON with the given status code.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error payload {"error": msg} with the given status.
// An empty msg falls back to http.StatusText(status).
func Error(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	Respond(w, status, map[string]string{"error": msg})
}
