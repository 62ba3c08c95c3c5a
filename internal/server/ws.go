package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/corralworks/corral/internal/telemetry"
)

const (
	// wsWriteTimeout bounds a single frame write.
	wsWriteTimeout = 10 * time.Second

	// wsPingInterval keeps intermediaries from dropping idle feeds.
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS middleware; the feed is
	// additionally behind the authentication pipeline.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEventFeed upgrades the connection and streams inventory events as
// JSON text frames until the client disconnects or falls too far behind.
func (s *Server) handleEventFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Printf("events: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	telemetry.EventFeedClients.Inc()
	defer telemetry.EventFeedClients.Dec()

	feed, cancel := s.bus.Subscribe()
	defer cancel()

	// Reader goroutine: the feed is write-only, but reads must be drained to
	// process close frames and detect disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-feed:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					log.Printf("events: write failed: %v", err)
				}
				return
			}

		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
