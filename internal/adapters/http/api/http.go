// Package api wires the operational HTTP routes and the middleware shared
// by every route.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Route names double as the endpoint label in HTTP metrics.
const (
	RouteHealth = "healthz"
	RouteReady  = "readyz"
)

// Server wires the operational routes.
type Server struct {
	healthHandler *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer() *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
	}
}

// Register attaches the operational routes to router.
func (s *Server) Register(_ context.Context, router *mux.Router) {
	router.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet).Name(RouteHealth)
	router.HandleFunc("/readyz", s.healthHandler.HandleReady).Methods(http.MethodGet).Name(RouteReady)
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
