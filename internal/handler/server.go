// Package handler implements the HTTP handlers of the schedule store API.
// All handlers are methods on Server. Methods are split into files by
// resource (health.go, schedule.go, subscribe.go) but share the Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// ScheduleServicer defines the store operations the schedule handlers
// depend on. Defining it here, in the consumer package, lets handler tests
// inject a mock without a database.
type ScheduleServicer interface {
	Load(ctx context.Context, tripID uuid.UUID) (domain.Snapshot, error)
	Save(ctx context.Context, tripID uuid.UUID, clientID string, doc domain.Document) (int64, error)
	Subscribe(ctx context.Context, tripID uuid.UUID, fn func(domain.Notification)) (func(), error)
	Delete(ctx context.Context, tripID uuid.UUID) error
}

// Server holds the dependencies of every endpoint.
type Server struct {
	schedules ScheduleServicer
	upgrader  websocket.Upgrader
	log       *slog.Logger
}

// NewServer constructs the Server. allowedOrigins lists the browser origins
// allowed to open subscription sockets; "*" allows any. With none, only
// same-origin sockets are accepted.
func NewServer(schedules ScheduleServicer, log *slog.Logger, allowedOrigins ...string) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		schedules: schedules,
		log:       log,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: writeWait,
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
		},
	}
	if len(allowedOrigins) > 0 {
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		}
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}

// Routes returns a router serving every endpoint. Middleware is applied by
// the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/trips/{tripID}/schedule", s.GetSchedule)
	r.Put("/trips/{tripID}/schedule", s.PutSchedule)
	r.Delete("/trips/{tripID}/schedule", s.DeleteSchedule)
	r.Get("/trips/{tripID}/schedule/subscribe", s.SubscribeSchedule)
	return r
}
