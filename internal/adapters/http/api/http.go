// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vityaz/arena/internal/domain/model"
)

// Default limits for read endpoints.
const defaultMaxLeaderboardLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingest validates, deduplicates, and enqueues one inbound event.
	// Returns false on backpressure.
	Ingest(ctx context.Context, e model.Envelope) (bool, error)

	// Read operations over ratings and queues.
	Leaderboard(ctx context.Context, limit int) []model.RatingRecord
	Rank(ctx context.Context, playerID string) (int, model.RatingRecord, error)
	QueueStatus(ctx context.Context, mode string) (model.QueueStatus, error)
	PlayerStats(ctx context.Context, playerID string) (model.RatingRecord, bool)
	GetStats(ctx context.Context) map[string]interface{}
	Modes() []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	queueHandler       *QueueHandler

	maxLeaderboardLimit int
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxLeaderboardLimit caps GET /leaderboard?limit.
func WithMaxLeaderboardLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.eventsHandler = NewEventsHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLeaderboardLimit)
	s.rankHandler = NewRankHandler(deps)
	s.queueHandler = NewQueueHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/queue/status", MetricsMiddleware(s.queueHandler.HandleGetStatus, "queue_status"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
