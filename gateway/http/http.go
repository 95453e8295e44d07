// Package http exposes the reasoning engine over a JSON HTTP API.
//
// Sessions are created with POST /v1/sessions and advanced one turn at
// a time with POST /v1/sessions/{id}/messages. Turns within a session
// are serialized; different sessions run concurrently. Each turn loads
// the session snapshot from the store, hydrates a graph, runs the
// engine, and persists the updated snapshot before replying.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/wellgraph/wellgraph/config"
	"github.com/wellgraph/wellgraph/engine"
	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/evidence"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/health"
	"github.com/wellgraph/wellgraph/storage"
	"github.com/wellgraph/wellgraph/vocabulary"
)

const maxRequestSize = 1 << 20 // 1 MiB

// Server serves the session API.
type Server struct {
	engine   *engine.Engine
	store    storage.Store
	vocab    *vocabulary.Table
	logger   *slog.Logger
	limiter  *rate.Limiter
	registry *prometheus.Registry
	monitor  *health.Monitor

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewServer wires the API around an engine and a session store.
// Registry may be nil when no /metrics endpoint is wanted.
func NewServer(eng *engine.Engine, store storage.Store, vocab *vocabulary.Table,
	cfg config.ServerConfig, registry *prometheus.Registry, logger *slog.Logger) *Server {

	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:   eng,
		store:    store,
		vocab:    vocab,
		logger:   logger.With("component", "Server"),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		registry: registry,
		monitor:  health.NewMonitor(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	mux.HandleFunc("POST /v1/sessions/{id}/messages", s.handleMessage)
	mux.HandleFunc("GET /v1/sessions/{id}/graph", s.handleGraph)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return s.middleware(mux)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getOrGenerateRequestID(r)
		w.Header().Set("X-Request-ID", requestID)

		if !s.limiter.Allow() {
			s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getOrGenerateRequestID extracts the request ID from headers or
// generates a new one for tracing across the API and the audit trail.
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		return reqID
	}
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// sessionLock returns the per-session mutex, creating it on first use.
// Turns within a session must not interleave.
func (s *Server) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	g := graph.New(id, s.vocab, s.logger)
	if err := s.store.Save(r.Context(), g.Export()); err != nil {
		s.logger.Error("session create failed", "error", err)
		s.writeErrorFrom(w, err)
		return
	}
	s.logger.Info("session created", "session_id", id)
	s.writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: id})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.Sessions(r.Context())
	if err != nil {
		s.writeErrorFrom(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

type messageRequest struct {
	Text     string   `json:"text"`
	Emotions []string `json:"emotions"`
	Symptoms []string `json:"symptoms"`
	Triggers []string `json:"triggers"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxRequestSize {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds maximum size of %d bytes", maxRequestSize))
		return
	}

	var req messageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.loadSession(r.Context(), id)
	if err != nil {
		s.writeErrorFrom(w, err)
		return
	}

	resp, err := s.engine.ProcessTurn(r.Context(), g, evidence.Evidence{
		Text:      req.Text,
		Emotions:  req.Emotions,
		Symptoms:  req.Symptoms,
		Triggers:  req.Triggers,
		TurnIndex: g.Turn(),
	})
	if err != nil {
		s.logger.Error("turn failed", "session_id", id, "error", err)
		s.writeErrorFrom(w, err)
		return
	}

	if err := s.store.Save(r.Context(), g.Export()); err != nil {
		s.logger.Error("session save failed", "session_id", id, "error", err)
		s.writeErrorFrom(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type graphResponse struct {
	SessionID string `json:"session_id"`
	Turn      int    `json:"turn"`
	Facts     []factView `json:"facts"`
}

type factView struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Source    string `json:"source"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.loadSession(r.Context(), id)
	if err != nil {
		s.writeErrorFrom(w, err)
		return
	}

	facts := g.All()
	views := make([]factView, len(facts))
	for i, f := range facts {
		views[i] = factView{
			Subject:   f.Subject,
			Predicate: f.Predicate,
			Object:    f.Object,
			Source:    f.Source.String(),
		}
	}
	s.writeJSON(w, http.StatusOK, graphResponse{SessionID: id, Turn: g.Turn(), Facts: views})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Sessions(r.Context()); err != nil {
		s.monitor.Update("store", health.FromError("store", err))
	} else {
		s.monitor.UpdateHealthy("store", "ok")
	}

	status := s.monitor.AggregateHealth("wellgraph")
	code := http.StatusOK
	if !status.IsHealthy() {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, status)
}

func (s *Server) loadSession(ctx context.Context, id string) (*graph.Graph, error) {
	snap, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	g := graph.New(id, s.vocab, s.logger)
	if err := g.Hydrate(snap); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response write failed", "error", err)
	}
}

// writeErrorFrom maps an engine or store error to a status code and a
// sanitized message. Internal detail stays in the logs.
func (s *Server) writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	case errors.IsInvalid(err):
		s.writeError(w, http.StatusBadRequest, "invalid request")
	case errors.IsTransient(err):
		s.writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	data, _ := json.Marshal(map[string]any{
		"error":  message,
		"status": statusCode,
	})
	w.Write(data)
}
