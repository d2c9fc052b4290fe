// Package httpapi exposes the chat widget API over chi: the chat endpoint,
// the FAQ card, lead capture, per-session history and the operational
// endpoints (health, metrics, catalog debug).
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/domain"
	"github.com/faroled/faro/internal/repository/history"
	chatuc "github.com/faroled/faro/internal/usecase/chat"
	faquc "github.com/faroled/faro/internal/usecase/faq"
	healthuc "github.com/faroled/faro/internal/usecase/health"
	leadsuc "github.com/faroled/faro/internal/usecase/leads"
)

// HistoryReader lists recorded exchanges for one session.
type HistoryReader interface {
	List(ctx context.Context, sessionID string) ([]history.Entry, error)
}

// CatalogReader exposes the current index snapshot for the debug endpoint.
type CatalogReader interface {
	Get() (*catalog.Snapshot, error)
}

// Server holds the HTTP handlers. Route wiring happens in Routes.
type Server struct {
	chat    *chatuc.Service
	leads   *leadsuc.Service
	faq     *faquc.Service
	history HistoryReader
	catalog CatalogReader
	health  *healthuc.Service
	logger  *zap.Logger
}

// NewServer creates the HTTP API server. history and faq can be nil; their
// endpoints then answer 404 and an empty card.
func NewServer(
	chat *chatuc.Service,
	leads *leadsuc.Service,
	faq *faquc.Service,
	hist HistoryReader,
	cat CatalogReader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:    chat,
		leads:   leads,
		faq:     faq,
		history: hist,
		catalog: cat,
		health:  health,
		logger:  logger,
	}
}

// Routes mounts every endpoint on a router. Auth and observability
// middleware are applied by the caller.
func (s *Server) Routes(r chi.Router) {
	r.Post("/chat", s.PostChat)
	r.Get("/faq", s.GetFAQ)
	r.Post("/leads", s.PostLead)
	r.Get("/history/{session_id}", s.GetHistory)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/debug/catalog", s.DebugCatalog)
}

// PostChat handles POST /chat.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var req chatuc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "session_id is required")
		return
	}

	resp, err := s.chat.Handle(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFAQ handles GET /faq.
func (s *Server) GetFAQ(w http.ResponseWriter, r *http.Request) {
	if s.faq == nil {
		writeJSON(w, http.StatusOK, faquc.CompanyCard{})
		return
	}
	writeJSON(w, http.StatusOK, s.faq.Card())
}

// PostLead handles POST /leads.
func (s *Server) PostLead(w http.ResponseWriter, r *http.Request) {
	var req leadsuc.Submission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	l, err := s.leads.Capture(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": l.ID()})
}

// GetHistory handles GET /history/{session_id}.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "not_found", "history is not enabled")
		return
	}
	sessionID := chi.URLParam(r, "session_id")

	entries, err := s.history.List(r.Context(), sessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"items":      entries,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// DebugCatalog handles GET /debug/catalog: index size and vocabulary counts
// for diagnosing a bad feed without dumping products into logs.
func (s *Server) DebugCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Get()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hash":     snap.Hash(),
		"products": snap.DocCount,
		"vocab":    len(snap.Vocab),
		"cat_tags": len(snap.CatTags),
		"phrases":  len(snap.Phrases),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelStatus maps domain sentinels to HTTP responses, checked in order.
var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrEmptyMessage, http.StatusBadRequest, "empty_message"},
	{domain.ErrInvalidLead, http.StatusBadRequest, "validation_failed"},
	{domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, "catalog_unavailable"},
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range sentinelStatus {
		if errors.Is(err, m.err) {
			s.logger.Warn("domain error", zap.Error(err))
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
