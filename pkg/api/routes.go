package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes registers all API endpoints on the router.
func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	assessments := api.PathPrefix("/assessments").Subrouter()
	assessments.HandleFunc("", handlers.SubmitAssessment).Methods("POST")
	assessments.HandleFunc("/{jobId}", handlers.GetAssessment).Methods("GET")
	assessments.HandleFunc("/{jobId}/result", handlers.GetResult).Methods("GET")
	assessments.HandleFunc("/{jobId}/report", handlers.GetReport).Methods("GET")

	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
}
