package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server runs the router on a TCP listener.
type Server struct {
	server *http.Server
	logger *slog.Logger
	addr   net.Addr
	errCh  chan error
}

// NewServer creates a Server serving handler on listen.
func NewServer(listen string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		server: &http.Server{
			Addr:              listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		errCh:  make(chan error, 1),
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.addr = ln.Addr()

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.addr.String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
			s.errCh <- err
		}
		close(s.errCh)
	}()
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Err delivers a serve failure and is closed when the server stops.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Shutdown stops accepting connections and waits for active requests.
// Hijacked websocket connections are not waited for.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
