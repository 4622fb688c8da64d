// Package httpx carries the JSON envelope shared by every ATM endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError is the error envelope. Code is the machine-readable discriminator
// the frontend switches on (card_blocked, pin_incorrect, ...); Details carries
// structured extras such as the remaining-attempts count.
type APIError struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{
		Code:    code,
		Error:   msg,
		Details: details,
	})
}
