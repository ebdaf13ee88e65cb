package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/policystore"
	"github.com/inkveil/engine/internal/scan"
	"github.com/inkveil/engine/internal/store"
)

// Server handles HTTP requests
type Server struct {
	db           store.DB
	policies     *policystore.Store
	catalog      *content.Catalog
	scanner      *scan.Scanner
	errorHandler *ErrorHandler
	logger       *log.Logger
	startTime    time.Time
}

// NewServer creates a new API server
func NewServer(db store.DB, policies *policystore.Store, cat *content.Catalog) *Server {
	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)

	return &Server{
		db:           db,
		policies:     policies,
		catalog:      cat,
		scanner:      scan.NewScanner(cat),
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		startTime:    time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.CORSMiddleware)

	// Health and monitoring endpoints
	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/version", s.handleVersion)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleCreateRun)
			r.Get("/", s.handleListRuns)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Delete("/", s.handleDeleteRun)
				r.Post("/rooms/{index}/enter", s.handleEnterRoom)
				r.Post("/combat/play", s.handlePlayCard)
				r.Post("/combat/end-turn", s.handleEndTurn)
				r.Post("/abandon", s.handleAbandonRun)
				r.Get("/merchant/offers", s.handleMerchantOffers)
				r.Post("/merchant/purchase", s.handleMerchantPurchase)
			})
		})
		r.Get("/unlocks", s.handleUnlocks)
		r.Route("/policies", func(r chi.Router) {
			r.Post("/", s.handleCreatePolicy)
			r.Get("/", s.handleListPolicies)
			r.Route("/{policyID}", func(r chi.Router) {
				r.Get("/", s.handleGetPolicy)
				r.Put("/", s.handleUpdatePolicy)
				r.Delete("/", s.handleDeletePolicy)
			})
		})
		r.Post("/scans", s.handleScan)
		r.Get("/scans", s.handleListScans)
		r.Get("/scans/{scanID}", s.handleGetScan)
		r.Get("/scans/{scanID}/samples", s.handleGetScanSamples)
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSONBody(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

// writeError writes a structured error response
func (s *Server) writeError(w http.ResponseWriter, status int, errType, message string, context map[string]interface{}) {
	s.writeJSON(w, status, EngineError{
		Type:    errType,
		Message: message,
		Context: context,
	})
}
