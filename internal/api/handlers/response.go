package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/watchlist/internal/contracts"
)

// Response is the common JSON envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Error: message})
}

// statusFor maps the error taxonomy to HTTP codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrNotFound), errors.Is(err, contracts.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
