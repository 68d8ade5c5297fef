package utils

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrorBody is the envelope of every failed API call. Error is a stable machine code.
type ErrorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Detail  json.RawMessage   `json:"detail,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message})
}

// WriteErrorDetail passes detail through verbatim, e.g. a gateway response body.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message string, detail []byte) {
	body := ErrorBody{Error: code, Message: message}
	if len(detail) > 0 && json.Valid(detail) {
		body.Detail = detail
	}
	WriteJSON(w, status, body)
}

func WriteFieldErrors(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message, Fields: fields})
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}
