package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/alerts"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/monitor"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

// runTimeout caps one scheduler-triggered monitor run.
const runTimeout = 60 * time.Second

// Server exposes the monitor trigger endpoints for an external scheduler
// plus health and notification listing.
type Server struct {
	store     storage.Store
	runner    *monitor.Runner
	credit    monitor.Monitor
	documents monitor.Monitor
	notifiers []alerts.Notifier
	mux       *http.ServeMux
	logger    *slog.Logger
}

// NewServer creates the HTTP API server.
func NewServer(store storage.Store, runner *monitor.Runner, credit, documents monitor.Monitor, notifiers []alerts.Notifier, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		runner:    runner,
		credit:    credit,
		documents: documents,
		notifiers: notifiers,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/monitors/credit/run", s.handleRun(s.credit))
	s.mux.HandleFunc("POST /api/v1/monitors/documents/run", s.handleRun(s.documents))
	s.mux.HandleFunc("GET /api/v1/notifications", s.handleNotifications)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleRun executes one monitor batch. The summary is always returned,
// even on failure, so the scheduler can alert on success=false.
func (s *Server) handleRun(m monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
		defer cancel()

		summary := s.runner.Run(ctx, m)
		s.dispatchOpsAlerts(ctx, summary)

		w.Header().Set("Content-Type", "application/json")
		if !summary.Success {
			w.WriteHeader(http.StatusInternalServerError)
		}
		json.NewEncoder(w).Encode(summary)
	}
}

// dispatchOpsAlerts mirrors degraded or failed runs to the operations
// channels. Healthy runs stay quiet.
func (s *Server) dispatchOpsAlerts(ctx context.Context, summary monitor.Summary) {
	if summary.Success && summary.NotificationsFailed == 0 {
		return
	}
	alert := alerts.Alert{
		Monitor:              summary.Monitor,
		Success:              summary.Success,
		SubjectsChecked:      summary.SubjectsChecked,
		NotificationsCreated: summary.NotificationsCreated,
		NotificationsFailed:  summary.NotificationsFailed,
		Error:                summary.Error,
	}
	for _, n := range s.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			s.logger.Error("send ops alert", "notifier", n.Name(), "monitor", summary.Monitor, "error", err)
		}
	}
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := model.NotificationFilter{
		UserID: r.URL.Query().Get("user_id"),
		Type:   r.URL.Query().Get("type"),
		Limit:  50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	notifications, err := s.store.ListNotifications(ctx, filter)
	if err != nil {
		s.logger.Error("list notifications", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}
