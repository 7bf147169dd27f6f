package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/triage/internal/agent"
	"github.com/MikeSquared-Agency/triage/internal/processor"
	"github.com/MikeSquared-Agency/triage/internal/routing"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

// ComplaintStore is the ticket persistence the API needs.
type ComplaintStore interface {
	CreateComplaint(ctx context.Context, in store.NewComplaint) (*store.Complaint, error)
	GetComplaint(ctx context.Context, id uuid.UUID) (*store.Complaint, error)
	ListComplaints(ctx context.Context, f store.ComplaintFilter) ([]store.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, id uuid.UUID, status string) (*store.Complaint, error)
	KPIs(ctx context.Context) (*store.KPIs, error)
}

// Pipeline is the processor surface used by the handlers.
type Pipeline interface {
	Analyze(ctx context.Context, text string) (*processor.Result, error)
	TicketFiled(ctx context.Context, c *store.Complaint, escalate bool)
	StatusChanged(c *store.Complaint)
}

type Server struct {
	router   *chi.Mux
	port     int
	store    ComplaintStore
	pipeline Pipeline
}

func NewServer(port int, apiToken string, db ComplaintStore, pipeline Pipeline) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		store:    db,
		pipeline: pipeline,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/triage/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/analyze", s.analyze)
		r.Post("/complaints", s.createComplaint)
		r.Get("/complaints", s.listComplaints)
		r.Get("/complaints/{id}", s.getComplaint)
		r.Patch("/complaints/{id}/status", s.updateStatus)
		r.Get("/kpis", s.kpis)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware rejects requests without the configured token. An
// empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "triage",
		"status": "ready",
	})
}

// analyze handles POST /api/v1/analyze with either a JSON body or a form.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var text string
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		text = req.Text
	} else {
		text = r.FormValue("text")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}

	res, err := s.pipeline.Analyze(r.Context(), text)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		writeError(w, http.StatusBadGateway, agent.Describe(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type createComplaintRequest struct {
	StudentID    string `json:"student_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Priority     string `json:"priority"`
	AIAnalysisID string `json:"ai_analysis_id,omitempty"`
	Escalate     bool   `json:"escalate"`
}

func (s *Server) createComplaint(w http.ResponseWriter, r *http.Request) {
	var req createComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	in := store.NewComplaint{
		StudentID:   strings.TrimSpace(req.StudentID),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Priority:    req.Priority,
	}
	switch {
	case in.Title == "":
		writeError(w, http.StatusBadRequest, "title required")
		return
	case in.Description == "":
		writeError(w, http.StatusBadRequest, "description required")
		return
	case !routing.IsTicketCategory(in.Category):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", in.Category))
		return
	}
	if req.AIAnalysisID != "" {
		id, err := uuid.Parse(req.AIAnalysisID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ai_analysis_id")
			return
		}
		in.AIAnalysisID = &id
	}

	c, err := s.store.CreateComplaint(r.Context(), in)
	if err != nil {
		slog.Error("failed to create complaint", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create complaint")
		return
	}
	if s.pipeline != nil {
		s.pipeline.TicketFiled(r.Context(), c, req.Escalate)
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ComplaintFilter{
		Category:  q.Get("category"),
		Status:    q.Get("status"),
		StudentID: q.Get("student_id"),
	}
	if f.Status != "" && !store.ValidStatus(f.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", f.Status))
		return
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}

	out, err := s.store.ListComplaints(r.Context(), f)
	if err != nil {
		slog.Error("failed to list complaints", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list complaints")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"complaints": out, "count": len(out)})
}

func (s *Server) getComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}
	c, err := s.store.GetComplaint(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !store.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", req.Status))
		return
	}

	c, err := s.store.UpdateComplaintStatus(r.Context(), id, req.Status)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if s.pipeline != nil {
		s.pipeline.StatusChanged(c)
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) kpis(w http.ResponseWriter, r *http.Request) {
	k, err := s.store.KPIs(r.Context())
	if err != nil {
		slog.Error("failed to compute kpis", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute kpis")
		return
	}
	writeJSON(w, http.StatusOK, k)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "complaint not found")
		return
	}
	slog.Error("store error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func complaintID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid complaint id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
