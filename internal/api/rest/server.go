package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/dugout/internal/cache"
	"github.com/fortuna/dugout/internal/pipeline"
	"github.com/fortuna/dugout/internal/store"
)

// Server represents the REST API server.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. The cache may be nil; read
// endpoints then always hit the database.
func NewServer(port string, db *store.Database, rc *cache.RedisCache, orch *pipeline.Orchestrator) *Server {
	handler := NewHandler(db, rc)
	cronHandler := NewCronHandler(orch)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Standings and rankings
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")
	api.HandleFunc("/rankings/history", handler.GetRankingHistory).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{teamID}/stats", handler.GetTeamStats).Methods("GET")
	api.HandleFunc("/teams/{teamID}/rankings", handler.GetTeamRankingHistory).Methods("GET")

	// Schedule
	api.HandleFunc("/schedule/month/{year}/{month}", handler.GetMonthSchedule).Methods("GET")
	api.HandleFunc("/schedule/team/{teamID}", handler.GetTeamSchedule).Methods("GET")
	api.HandleFunc("/schedule/team/{teamID}/next", handler.GetNextGame).Methods("GET")

	// Scrape triggers, hit by an external cron or manually. GET is allowed
	// because runs are idempotent and it makes browser-poking easy.
	api.HandleFunc("/cron/all", cronHandler.RunAll).Methods("GET", "POST")
	api.HandleFunc("/cron/{pipeline}", cronHandler.RunOne).Methods("GET", "POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
