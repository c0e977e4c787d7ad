package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/logger"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/metrics"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// maxBodyBytes bounds request bodies on event and rule routes
const maxBodyBytes = 1 << 20

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	engine  *rules.Engine
	storage Pinger
	metrics *metrics.Collector
	router  *chi.Mux
}

func NewServer(engine *rules.Engine, storage Pinger, collector *metrics.Collector) *Server {
	s := &Server{
		engine:  engine,
		storage: storage,
		metrics: collector,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/api/v1/health", s.handleHealth)

	r.Post("/api/v1/events", s.handleProcessEvent)

	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/", s.handleCreateRule)

		r.Route("/{ruleId}", func(r chi.Router) {
			r.Get("/", s.handleGetRule)
			r.Delete("/", s.handleDeleteRule)
			r.Put("/enabled", s.handleSetEnabled)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.storage != nil {
		if err := s.storage.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unhealthy",
				Error:  err.Error(),
			})
			return
		}
	}

	list, err := s.engine.GetRules()
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Error:  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		RulesLoaded: len(list),
	})
}

func (s *Server) handleProcessEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if !req.Type.Valid() {
		respondError(w, http.StatusBadRequest, "unknown event type", fmt.Errorf("%q", req.Type))
		return
	}
	if req.Payload == nil {
		req.Payload = rules.Payload{}
	}

	result := s.engine.ProcessEvent(r.Context(), req.Type, req.Payload)
	if !result.Success {
		respondJSON(w, http.StatusInternalServerError, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.GetRules()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list rules", err)
		return
	}
	if list == nil {
		list = []*rules.Rule{}
	}

	respondJSON(w, http.StatusOK, RulesListResponse{Rules: list})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	stored, err := s.engine.AddRule(req.Rule())
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to add rule", err)
		return
	}

	respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.engine.GetRule(chi.URLParam(r, "ruleId"))
	if !ok {
		respondError(w, http.StatusNotFound, "rule not found", rules.ErrRuleNotFound)
		return
	}

	respondJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")
	if _, ok := s.engine.GetRule(ruleID); !ok {
		respondError(w, http.StatusNotFound, "rule not found", rules.ErrRuleNotFound)
		return
	}

	s.engine.RemoveRule(ruleID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")

	var req SetEnabledRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Enabled == nil {
		respondError(w, http.StatusBadRequest, "enabled is required", nil)
		return
	}

	if _, ok := s.engine.GetRule(ruleID); !ok {
		respondError(w, http.StatusNotFound, "rule not found", rules.ErrRuleNotFound)
		return
	}

	s.engine.ToggleRule(ruleID, *req.Enabled)
	rule, _ := s.engine.GetRule(ruleID)
	respondJSON(w, http.StatusOK, rule)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "status", status, "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error(message, "status", status, "error", response.Details)
	}
	respondJSON(w, status, response)
}
