package server

import (
	"net/http"
	"time"

	"github.com/alkime/soundboard/internal/engine"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// writeDeadline bounds a single websocket write.
	writeDeadline = 5 * time.Second
	// readDeadline is how long a silent client survives; pings keep it alive.
	readDeadline = 90 * time.Second
	pingInterval = 30 * time.Second

	maxReadMessageSize = 1024
	eventQueue         = 32
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// handleEvents streams engine events to a websocket client as JSON.
func (s *Server) handleEvents(c *gin.Context) {
	if s.events == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Kind: "unavailable", Message: "event stream disabled"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := make(chan engine.Event, eventQueue)
	unsubscribe, err := s.events.Subscribe(ch)
	if err != nil {
		s.logger.Error("failed to subscribe to engine events", "error", err)
		return
	}
	defer unsubscribe()

	id := c.GetString(requestIDKey)
	s.logger.Debug("event stream opened", requestIDKey, id)

	closed := make(chan struct{})
	go s.readPump(conn, closed)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			s.logger.Debug("event stream closed", requestIDKey, id)
			return
		case ev := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("event write failed", requestIDKey, id, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames so pongs and close frames are processed,
// and closes done when the connection ends.
func (s *Server) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxReadMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
