package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwang1401/travel-planner/internal/client"
	"github.com/hwang1401/travel-planner/internal/domain"
)

type inbox struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (b *inbox) add(n domain.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, n)
}

func (b *inbox) all() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Notification(nil), b.got...)
}

func TestHTTPStore_SubscribeReceivesOtherSaves(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tripID := uuid.New()
	var box inbox

	cancel, err := store.Subscribe(ctx, tripID, box.add)
	require.NoError(t, err)
	defer cancel()

	// the server subscribes only after the handshake completes
	require.Eventually(t, func() bool {
		if _, err := store.Save(ctx, tripID, "client-b", sampleDoc()); err != nil {
			return false
		}
		return len(box.all()) > 0
	}, 2*time.Second, 20*time.Millisecond)

	n := box.all()[0]
	assert.Equal(t, tripID, n.TripID)
	assert.Equal(t, "client-b", n.UpdatedBy)
	assert.Positive(t, n.Version)
}

// flakyServer serves a snapshot and drops the first subscription socket
// after one notification.
type flakyServer struct {
	upgrader websocket.Upgrader
	snap     domain.Snapshot

	mu    sync.Mutex
	dials int
}

func (f *flakyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/subscribe") {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.snap)
		return
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.dials++
	first := f.dials == 1
	f.mu.Unlock()

	if first {
		_ = conn.WriteJSON(domain.Notification{Version: 1, UpdatedBy: "client-b"})
		_ = conn.Close()
		return
	}
	defer conn.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *flakyServer) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

func TestHTTPStore_SubscribeReconnectsAndCatchesUp(t *testing.T) {
	fs := &flakyServer{snap: domain.Snapshot{Data: sampleDoc(), Version: 5}}
	srv := httptest.NewServer(fs)
	defer srv.Close()
	store, err := client.New(srv.URL, client.WithReconnectInterval(10*time.Millisecond))
	require.NoError(t, err)
	var box inbox

	cancel, err := store.Subscribe(context.Background(), uuid.New(), box.add)
	require.NoError(t, err)
	defer cancel()

	require.Eventually(t, func() bool { return len(box.all()) >= 2 }, 2*time.Second, 10*time.Millisecond)
	got := box.all()
	assert.Equal(t, int64(1), got[0].Version)
	assert.Equal(t, int64(5), got[1].Version)
	assert.Empty(t, got[1].UpdatedBy)
	assert.Equal(t, 2, fs.dialCount())
}

func TestHTTPStore_CancelStopsReconnecting(t *testing.T) {
	fs := &flakyServer{}
	srv := httptest.NewServer(fs)
	defer srv.Close()
	store, err := client.New(srv.URL, client.WithReconnectInterval(50*time.Millisecond))
	require.NoError(t, err)

	cancel, err := store.Subscribe(context.Background(), uuid.New(), func(domain.Notification) {})
	require.NoError(t, err)
	cancel()
	cancel()

	time.Sleep(150 * time.Millisecond)
	assert.LessOrEqual(t, fs.dialCount(), 2)
}
