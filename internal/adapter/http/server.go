package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/cwygoda/shopsearch/internal/domain"
	"github.com/cwygoda/shopsearch/internal/search"
)

const (
	maxBodyBytes   = 1 << 20
	maxNumProducts = 50
)

// Server exposes the local search state over HTTP.
type Server struct {
	searcher *search.Searcher
	history  *domain.HistoryService
	log      zerolog.Logger
	validate *validator.Validate
	mux      *http.ServeMux
	server   *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(searcher *search.Searcher, history *domain.HistoryService, addr string, log zerolog.Logger) *Server {
	s := &Server{
		searcher: searcher,
		history:  history,
		log:      log.With().Str("component", "http").Logger(),
		validate: validator.New(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /search", s.handleSearch)
	s.mux.HandleFunc("POST /search/legacy", s.handleLegacy)
	s.mux.HandleFunc("DELETE /search", s.handleCancel)
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /history/{session}", s.handleHistoryEntry)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// legacyRequest is the request body for POST /search/legacy.
type legacyRequest struct {
	Prompt      string `json:"prompt"`
	NumProducts int    `json:"num_products" validate:"gte=0,lte=50"`
}

// historyResponse is the JSON response for history endpoints.
type historyResponse struct {
	Session     string `json:"session"`
	JobID       string `json:"job_id"`
	Query       string `json:"query"`
	Filters     string `json:"filters,omitempty"`
	Phase       string `json:"phase"`
	Error       string `json:"error,omitempty"`
	ResultCount int    `json:"result_count"`
	CreatedAt   string `json:"created_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
}

// errorResponse is the JSON error response.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sess, err := s.searcher.SearchProducts(r.Context(), req)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, sess.State())
}

func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	var req legacyRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("num_products must be between 0 and %d", maxNumProducts))
		return
	}

	if _, err := s.searcher.SearchLegacy(r.Context(), req.Prompt, req.NumProducts); err != nil {
		s.writeSearchError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.searcher.State())
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.searcher.Cancel()
	s.writeJSON(w, http.StatusOK, s.searcher.State())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.searcher.State())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list history")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]historyResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, entryToResponse(&entries[i]))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.history.Get(r.Context(), r.PathValue("session"))
	if err != nil {
		if errors.Is(err, domain.ErrHistoryNotFound) {
			s.writeError(w, http.StatusNotFound, "search not found")
			return
		}
		s.log.Error().Err(err).Msg("get history entry")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, entryToResponse(entry))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeSearchError maps a search failure to a status code. The message is
// the same one written to the observable state.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, search.ErrClosed) {
		s.writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	}
	if errors.Is(err, context.Canceled) {
		s.writeError(w, http.StatusConflict, "search superseded")
		return
	}

	kind := domain.KindOf(err)
	status := http.StatusBadGateway
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindAuthRequired:
		status = http.StatusUnauthorized
	case "":
		s.log.Error().Err(err).Msg("search error")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: string(kind)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func entryToResponse(e *domain.HistoryEntry) historyResponse {
	resp := historyResponse{
		Session:     e.Session,
		JobID:       e.JobID,
		Query:       e.Query,
		Filters:     e.Filters,
		Phase:       string(e.Phase),
		Error:       e.Error,
		ResultCount: e.ResultCount,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.FinishedAt != nil {
		resp.FinishedAt = e.FinishedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Port extracts the port from the address.
func (s *Server) Port() int {
	addr := s.server.Addr
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		port, _ := strconv.Atoi(addr[idx+1:])
		return port
	}
	return 0
}
