// Package server streams contact events to diagnostic clients over
// WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/bladeguard/internal/core/events/bus"
	"github.com/zeusync/bladeguard/internal/core/observability/log"
)

// Config holds diagnostics server configuration
type Config struct {
	ListenAddr   string
	MaxClients   int
	SendBuffer   int
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8787",
		MaxClients:   64,
		SendBuffer:   256,
		WriteTimeout: 5 * time.Second,
	}
}

// Message is the JSON frame sent for every bus event.
type Message struct {
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Data      any            `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DiagnosticsServer forwards every event published on the bus to connected
// WebSocket clients. Slow clients lose frames instead of stalling the
// publisher.
type DiagnosticsServer struct {
	config Config
	events bus.EventBus
	logger log.Log
	sub    bus.Subscription

	clients     sync.Map // map[*client]struct{}
	clientCount int64    // atomic
	dropped     uint64   // atomic

	running int32 // atomic bool
	closed  int32 // atomic bool

	// lifecycle orders workerGroup.Add against Stop's Wait.
	lifecycle sync.Mutex

	httpServer  *http.Server
	listener    net.Listener
	workerGroup sync.WaitGroup
}

// NewDiagnosticsServerWithConfig subscribes a new server to every event on
// the bus. A nil bus yields a server that only accepts connections.
func NewDiagnosticsServerWithConfig(config Config, events bus.EventBus, logger log.Log) (*DiagnosticsServer, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultServerConfig().SendBuffer
	}
	s := &DiagnosticsServer{
		config: config,
		events: events,
		logger: logger.With(log.String("component", "diagnostics")),
	}
	if events != nil {
		sub, err := events.Subscribe(bus.AnyEvent, s.broadcast)
		if err != nil {
			return nil, fmt.Errorf("subscribe diagnostics: %w", err)
		}
		s.sub = sub
	}
	return s, nil
}

// Start listens on the configured address and serves in the background.
func (s *DiagnosticsServer) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		return fmt.Errorf("%w: %v", ErrListenerFailed, err)
	}
	s.lifecycle.Lock()
	if s.isClosed() {
		s.lifecycle.Unlock()
		_ = listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	s.workerGroup.Add(1)
	s.lifecycle.Unlock()

	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("diagnostics server stopped", log.Error(err))
		}
	}()

	s.logger.Info("diagnostics server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound listen address, or nil before Start.
func (s *DiagnosticsServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop unsubscribes from the bus, disconnects every client and shuts the
// listener down.
func (s *DiagnosticsServer) Stop(ctx context.Context) error {
	s.lifecycle.Lock()
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		s.lifecycle.Unlock()
		return ErrServerClosed
	}
	s.lifecycle.Unlock()

	if s.sub != nil {
		_ = s.events.Unsubscribe(s.sub)
	}

	s.clients.Range(func(key, _ any) bool {
		s.removeClient(key.(*client))
		return true
	})

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.workerGroup.Wait()
	atomic.StoreInt32(&s.running, 0)

	s.logger.Info("diagnostics server stopped",
		log.Uint64("dropped_frames", atomic.LoadUint64(&s.dropped)))
	return err
}

// ClientCount returns the number of connected clients.
func (s *DiagnosticsServer) ClientCount() int {
	return int(atomic.LoadInt64(&s.clientCount))
}

// Dropped returns how many frames were discarded for slow clients.
func (s *DiagnosticsServer) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

func (s *DiagnosticsServer) broadcast(e bus.Event) error {
	if atomic.LoadInt64(&s.clientCount) == 0 {
		return nil
	}
	payload, err := json.Marshal(Message{
		Type:      e.Type(),
		Source:    e.Source(),
		Timestamp: e.Timestamp(),
		Data:      e.Data(),
		Metadata:  e.Metadata(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	s.clients.Range(func(key, _ any) bool {
		c := key.(*client)
		select {
		case c.send <- payload:
		default:
			atomic.AddUint64(&s.dropped, 1)
		}
		return true
	})
	return nil
}

func (s *DiagnosticsServer) isClosed() bool {
	return atomic.LoadInt32(&s.closed) == 1
}
