package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope statuses. "fail" covers 4xx-class rejections the client can act
// on, "error" covers 5xx-class conditions on our side.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the JSON response shape shared across the service.
type Envelope struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	UserRole string `json:"user_role,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteSuccess writes a success envelope with optional data.
func WriteSuccess(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Status: StatusSuccess, Data: data})
}

// WriteFail writes a client-actionable rejection (4xx).
func WriteFail(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Status: StatusFail, Message: message})
}

// WriteFailWithRole is WriteFail with the caller's own role echoed in the
// payload. Used only where the API contract documents the echo.
func WriteFailWithRole(w http.ResponseWriter, code int, message, role string) {
	WriteJSON(w, code, Envelope{Status: StatusFail, Message: message, UserRole: role})
}

// WriteError writes a server-side failure (5xx).
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Status: StatusError, Message: message})
}
