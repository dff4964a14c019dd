// Package client is the HTTP and websocket implementation of domain.Store,
// used by sessions running outside the server process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hwang1401/travel-planner/internal/domain"
	"github.com/hwang1401/travel-planner/internal/handler"
)

// DefaultReconnectInterval spaces reconnection attempts of a dropped
// subscription.
const DefaultReconnectInterval = 2 * time.Second

// APIError is a non-2xx response from the store.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store responded %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the status onto the domain sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status == http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case e.Status >= http.StatusInternalServerError:
		return domain.ErrUnavailable
	}
	return nil
}

// Option configures an HTTPStore.
type Option func(*HTTPStore)

// WithHTTPClient sets the client used for GET and PUT requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPStore) { s.http = c }
}

// WithDialer sets the websocket dialer used by Subscribe.
func WithDialer(d *websocket.Dialer) Option {
	return func(s *HTTPStore) { s.dialer = d }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *HTTPStore) { s.log = log }
}

// WithReconnectInterval sets the minimum spacing of reconnection attempts.
func WithReconnectInterval(d time.Duration) Option {
	return func(s *HTTPStore) { s.reconnect = d }
}

// HTTPStore talks to a schedule store server.
type HTTPStore struct {
	base      *url.URL
	http      *http.Client
	dialer    *websocket.Dialer
	log       *slog.Logger
	reconnect time.Duration
}

var _ domain.Store = (*HTTPStore)(nil)

// New returns a store for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*HTTPStore, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client.New: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client.New: unsupported scheme %q", base.Scheme)
	}
	s := &HTTPStore{
		base:      base,
		http:      &http.Client{Timeout: 15 * time.Second},
		dialer:    websocket.DefaultDialer,
		log:       slog.Default(),
		reconnect: DefaultReconnectInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPStore) scheduleURL(tripID uuid.UUID) string {
	return s.base.String() + "/trips/" + tripID.String() + "/schedule"
}

func (s *HTTPStore) subscribeURL(tripID uuid.UUID) string {
	u := *s.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.String() + "/trips/" + tripID.String() + "/schedule/subscribe"
}

// Load fetches the trip's latest snapshot.
func (s *HTTPStore) Load(ctx context.Context, tripID uuid.UUID) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.scheduleURL(tripID), nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("client.HTTPStore.Load: %w", err)
	}
	var snap domain.Snapshot
	if err := s.do(req, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("client.HTTPStore.Load: %w", err)
	}
	return snap, nil
}

// Save sends the full document and returns the version the store minted.
func (s *HTTPStore) Save(ctx context.Context, tripID uuid.UUID, clientID string, doc domain.Document) (int64, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("client.HTTPStore.Save: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.scheduleURL(tripID), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("client.HTTPStore.Save: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.ClientIDHeader, clientID)

	var resp handler.SaveScheduleResponse
	if err := s.do(req, &resp); err != nil {
		return 0, fmt.Errorf("client.HTTPStore.Save: %w", err)
	}
	return resp.Version, nil
}

// Delete removes the trip's schedule.
func (s *HTTPStore) Delete(ctx context.Context, tripID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.scheduleURL(tripID), nil)
	if err != nil {
		return fmt.Errorf("client.HTTPStore.Delete: %w", err)
	}
	if err := s.do(req, nil); err != nil {
		return fmt.Errorf("client.HTTPStore.Delete: %w", err)
	}
	return nil
}

// do sends req and decodes a 2xx body into out, or the error body into an
// APIError.
func (s *HTTPStore) do(req *http.Request, out any) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body handler.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &body) == nil && body.Error.Code != "" {
			apiErr.Code, apiErr.Message = body.Error.Code, body.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
