// Package server exposes the research, prioritization, and simulation
// pipelines over JSON/HTTP. Every pipeline invocation is recorded as a run
// so results can be fetched again later.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/prodscope/prodscope/internal/prioritize"
	"github.com/prodscope/prodscope/internal/research"
	"github.com/prodscope/prodscope/internal/sim"
	"github.com/prodscope/prodscope/internal/store"
)

// Server wires the pipelines and the run store behind an HTTP API.
type Server struct {
	store     store.Store
	research  *research.Service
	engine    *prioritize.Engine
	simulator *sim.Simulator
}

func New(st store.Store, researchSvc *research.Service, engine *prioritize.Engine, simulator *sim.Simulator) *Server {
	return &Server{
		store:     st,
		research:  researchSvc,
		engine:    engine,
		simulator: simulator,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/research", runPipeline(s, "research", s.research.Research))
		r.Post("/personas", runPipeline(s, "research", s.research.Personas))
		r.Post("/prioritize", runPipeline(s, "prioritize", s.engine.Prioritize))
		r.Post("/simulate", runPipeline(s, "simulation", s.simulator.Simulate))
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
