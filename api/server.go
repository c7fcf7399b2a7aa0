// Package api exposes the HTTP surface. Handlers are thin: validation and
// session plumbing here, everything else in the injected services.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/docmind/rag-assistant/events"
	"github.com/docmind/rag-assistant/ingestion"
	"github.com/docmind/rag-assistant/rag"
	"github.com/docmind/rag-assistant/session"
)

// Answerer runs one question through the query pipeline.
type Answerer interface {
	Query(ctx context.Context, question, sessionID string) (rag.Result, error)
}

// Ingestor runs one corpus scan.
type Ingestor interface {
	Ingest(ctx context.Context) (ingestion.Stats, error)
}

// Resetter wipes the chunk collection.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Server wires the HTTP routes to dependencies constructed once at process
// start and passed in by the caller.
type Server struct {
	answerer Answerer
	ingestor Ingestor
	resetter Resetter
	sessions *session.Manager
	logs     *events.Reader
	logger   *log.Logger
	handler  http.Handler
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
}

type ingestResponse struct {
	Status             string `json:"status"`
	DocumentsProcessed int    `json:"documents_processed"`
	ChunksCreated      int    `json:"chunks_created"`
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(answerer Answerer, ingestor Ingestor, resetter Resetter, sessions *session.Manager, logs *events.Reader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		answerer: answerer,
		ingestor: ingestor,
		resetter: resetter,
		sessions: sessions,
		logs:     logs,
		logger:   logger,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/chat", s.handleChat)
	mux.HandleFunc("/v1/ingest", s.handleIngest)
	mux.HandleFunc("/v1/reset", s.handleReset)
	mux.HandleFunc("/v1/logs/sessions", s.handleSessions)
	mux.HandleFunc("/v1/logs/sessions/", s.handleSessionDetail)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("question cannot be empty"))
		return
	}

	forceNew := strings.EqualFold(r.Header.Get("X-New-Session"), "true")
	sessionID := s.sessions.SessionID(r.Header.Get("X-Session-ID"), forceNew)

	if rag.IsGreeting(req.Question) {
		s.writeJSON(w, http.StatusOK, chatResponse{
			SessionID: sessionID,
			Answer:    rag.GreetingResponse(),
			Sources:   []string{},
		})
		return
	}

	result, err := s.answerer.Query(r.Context(), req.Question, sessionID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("query failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Answer:    result.Answer,
		Sources:   result.Sources,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	stats, err := s.ingestor.Ingest(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("ingestion failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, ingestResponse{
		Status:             "success",
		DocumentsProcessed: stats.Documents,
		ChunksCreated:      stats.Chunks,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if !req.Confirm {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("confirm must be true to reset the store"))
		return
	}

	if err := s.resetter.Reset(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("reset failed: %w", err))
		return
	}

	s.logger.Println("vector store cleared")
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "vector store cleared"})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	summaries, err := s.logs.Sessions()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("read sessions: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/v1/logs/sessions/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		http.NotFound(w, r)
		return
	}

	entries, err := s.logs.Session(sessionID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("read session logs: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"logs":       entries,
	})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
