package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// APIResponse is the JSON envelope used by every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WriteSuccessResponse writes a successful JSON response.
func WriteSuccessResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSONResponse(w, statusCode, APIResponse{Success: true, Data: data})
}

// WriteErrorResponse writes an error JSON response.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := APIResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSONResponse(w, statusCode, resp)
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Int("status_code", statusCode).Msg("failed to encode JSON response")
	}
}
