// Package http exposes the assistant over a JSON API, server-sent events and
// WebSockets. Every conversational endpoint is a thin wrapper around
// ports.Conversation.Process.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/GenAICloudDevOps/AgenticBarista"
	"github.com/GenAICloudDevOps/AgenticBarista/internal/logging"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/runner"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

// Service groups the collaborators the HTTP surface reads from.
type Service struct {
	Conversation ports.Conversation
	Catalog      ports.Catalog
	Ledger       *cart.Ledger
	Sessions     *session.Manager
	Memory       *memory.Store
}

// Server serves the HTTP API.
type Server struct {
	Service
	Streams *StreamManager

	spec         *openapi3.T
	logger       *slog.Logger
	metrics      http.Handler
	maxInputSize int
}

type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares a stream manager with the router's commit hooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxInputSize sets the message size limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewHandler builds the HTTP handler for svc.
func NewHandler(ctx context.Context, svc Service, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	specRouter, err := newSpecRouter(spec)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Service: svc,
		spec:    spec,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Get("/ws/{session_id}", s.ServeWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSize(bodyLimit(s.maxInputSize)))
		r.Use(validateRequests(specRouter))
		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Post("/api/chat", s.Chat)
		r.Get("/api/menu", s.GetMenu)
		r.Route("/api/sessions/{session_id}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Get("/cart", s.GetCart)
			r.Get("/memory", s.GetMemory)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Barista API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse echoes the session so clients can continue a generated one.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	domain.RoutingResult
}

// MemoryResponse is the body of GET /api/sessions/{session_id}/memory.
type MemoryResponse struct {
	Summary domain.MemorySummary `json:"summary"`
	Entries []domain.MemoryEntry `json:"entries"`
}

// Chat handles POST /api/chat. A missing session_id starts a new session.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	result, err := s.process(r.Context(), body.SessionID, body.Message)
	if err != nil {
		s.writeProcessError(w, body.SessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{SessionID: body.SessionID, RoutingResult: result})
}

// process sanitizes message and routes it.
func (s *Server) process(ctx context.Context, sessionID, message string) (domain.RoutingResult, error) {
	clean, err := runner.SanitizeInputLimit(message, s.maxInputSize)
	if err != nil {
		return domain.RoutingResult{}, err
	}
	return s.Conversation.Process(ctx, sessionID, clean)
}

func (s *Server) writeProcessError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, runner.ErrInputTooLarge), errors.Is(err, runner.ErrInvalidUTF8), errors.Is(err, domain.ErrEmptySessionID):
		s.logger.Warn("Chat: input rejected", "session_id", sessionID, "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Chat failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
	}
}

// GetMenu handles GET /api/menu.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.Catalog.List(r.Context())
	if err != nil {
		s.logger.Error("List menu failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list menu")
		return
	}
	if category := strings.ToLower(r.URL.Query().Get("category")); category != "" {
		filtered := make([]domain.CatalogItem, 0, len(items))
		for _, it := range items {
			if it.Category == category {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	writeJSON(w, http.StatusOK, items)
}

// GetCart handles GET /api/sessions/{session_id}/cart.
func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	view, err := s.Ledger.View(r.Context(), id)
	if err != nil {
		s.logger.Error("Cart view failed", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetMemory handles GET /api/sessions/{session_id}/memory.
// With q, only the entries relevant to q are returned.
func (s *Server) GetMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "session_id")

	summary, err := s.Memory.Summary(ctx, id)
	if err != nil {
		s.logger.Error("Memory summary failed", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load memory")
		return
	}

	resp := MemoryResponse{Summary: summary, Entries: []domain.MemoryEntry{}}
	if q := r.URL.Query().Get("q"); q != "" {
		resp.Entries, err = s.Memory.Relevant(ctx, id, q)
	} else {
		var sess *domain.Session
		sess, err = s.Sessions.Load(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			err = nil
		} else if err == nil {
			resp.Entries = sess.Memory
		}
	}
	if err != nil {
		s.logger.Error("Memory load failed", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load memory")
		return
	}
	if resp.Entries == nil {
		resp.Entries = []domain.MemoryEntry{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /api/sessions/{session_id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.logger.Error("Delete session failed", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "barista-http",
		"version":     strings.TrimSpace(barista.Version),
		"api_version": apiVersion,
	})
}

// bodyLimit bounds API request bodies. A JSON-escaped character takes at most six
// bytes, and the envelope gets 1KB on top.
func bodyLimit(maxInput int) int64 {
	if maxInput <= 0 {
		maxInput = runner.DefaultMaxInputSize
	}
	return int64(maxInput)*6 + 1024
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
