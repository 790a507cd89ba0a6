// Package respond centralizes JSON response writing so every handler emits
// the same wire shapes: the payload itself on success, {"error": message} on
// failure.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// JSON writes the payload with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Error writes an error response. Messages are stable strings; raw internal
// error text never goes through here.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
