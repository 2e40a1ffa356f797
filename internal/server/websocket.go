package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/bladeguard/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *DiagnosticsServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.isClosed() {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	if s.config.MaxClients > 0 && atomic.LoadInt64(&s.clientCount) >= int64(s.config.MaxClients) {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, s.config.SendBuffer),
		done: make(chan struct{}),
	}
	if !s.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ErrServerClosed.Error()),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	s.logger.Debug("diagnostics client connected", log.String("remote", conn.RemoteAddr().String()))
	go s.writePump(c)

	// Clients only listen; reading drives control frames until they leave.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	s.removeClient(c)
}

// register adds c and its writer to the worker group unless Stop has
// already begun.
func (s *DiagnosticsServer) register(c *client) bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.isClosed() {
		return false
	}
	s.clients.Store(c, struct{}{})
	atomic.AddInt64(&s.clientCount, 1)
	s.workerGroup.Add(1)
	return true
}

func (s *DiagnosticsServer) writePump(c *client) {
	defer s.workerGroup.Done()
	for {
		select {
		case msg := <-c.send:
			if s.config.WriteTimeout > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.removeClient(c)
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			_ = c.conn.Close()
			return
		}
	}
}

func (s *DiagnosticsServer) removeClient(c *client) {
	c.closeOnce.Do(func() {
		s.clients.Delete(c)
		atomic.AddInt64(&s.clientCount, -1)
		close(c.done)
	})
}
