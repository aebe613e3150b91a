package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates the HTTP router with all endpoints
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")

	profiles := api.PathPrefix("/profiles/{id:-?[0-9]+}").Subrouter()
	profiles.Use(h.requireToken)
	profiles.HandleFunc("/progress", h.GetProgress).Methods("GET")
	profiles.HandleFunc("/statistics", h.GetStatistics).Methods("GET")
	profiles.HandleFunc("/export", h.ExportProgress).Methods("GET")
	profiles.HandleFunc("/feed", h.Feed).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(r)
}
