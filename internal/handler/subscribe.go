package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hwang1401/travel-planner/internal/domain"
)

const (
	// writeWait bounds a single write to a subscriber socket.
	writeWait = 10 * time.Second

	// pongWait is how long a silent subscriber is kept.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = pongWait * 9 / 10

	// maxInboundBytes caps frames sent by subscribers, which have nothing
	// to say beyond control frames.
	maxInboundBytes = 512
)

// SubscribeSchedule handles GET /trips/{tripID}/schedule/subscribe.
// It upgrades to a websocket and writes every change notification of the
// trip as one JSON text message until either side closes.
func (s *Server) SubscribeSchedule(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, parameterBody(err))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.log.WarnContext(r.Context(), "websocket upgrade failed", "trip_id", tripID.String(), "error", err)
		return
	}
	defer conn.Close()

	// The subscription goroutine is the only data writer; pings go through
	// WriteControl, which may run concurrently with it.
	unsubscribe, err := s.schedules.Subscribe(r.Context(), tripID, func(n domain.Notification) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(n); err != nil {
			_ = conn.Close()
		}
	})
	if err != nil {
		s.log.ErrorContext(r.Context(), "subscribe failed", "trip_id", tripID.String(), "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}
	defer unsubscribe()

	s.log.InfoContext(r.Context(), "schedule subscriber connected", "trip_id", tripID.String())
	done := make(chan struct{})
	defer close(done)
	go ping(conn, done)

	readUntilClosed(conn)
	s.log.InfoContext(r.Context(), "schedule subscriber disconnected", "trip_id", tripID.String())
}

// readUntilClosed consumes inbound frames so control frames are processed,
// and returns once the peer goes away or stops answering pings.
func readUntilClosed(conn *websocket.Conn) {
	conn.SetReadLimit(maxInboundBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
