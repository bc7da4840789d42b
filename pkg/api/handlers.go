// Package api exposes the assessment job service over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/graphstat/netassess/pkg/assess"
	"github.com/graphstat/netassess/pkg/service"
)

// Handlers contains the HTTP request handlers.
type Handlers struct {
	svc *service.Service
}

// NewHandlers creates API handlers over the job service.
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// SubmitAssessment queues a new assessment job.
func (h *Handlers) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req service.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	job, err := h.svc.Submit(req)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "failed to submit assessment", err)
		return
	}

	log.Info().Str("job_id", job.ID).Msg("assessment submitted via API")
	WriteSuccessResponse(w, http.StatusAccepted, job)
}

// GetAssessment returns job status.
func (h *Handlers) GetAssessment(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.svc.Get(jobID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "job not found", err)
		return
	}
	WriteSuccessResponse(w, http.StatusOK, job)
}

// GetResult returns the raw assessment result for a completed job.
func (h *Handlers) GetResult(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	result, err := h.svc.Result(jobID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "result not available", err)
		return
	}
	WriteSuccessResponse(w, http.StatusOK, result)
}

// GetReport returns the rendered numeric table for a completed job.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	result, err := h.svc.Result(jobID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "result not available", err)
		return
	}

	var buf bytes.Buffer
	if err := assess.NewReport(result).WriteTable(&buf); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "failed to render report", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}
