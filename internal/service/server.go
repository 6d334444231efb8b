package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server HTTP server with graceful stop
type Server struct {
	name       string
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(name, addr string, handler http.Handler, logger *zap.Logger) *Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{name: name, httpServer: s, logger: logger}
}

// Start blocks serving until Stop. A normal shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("server", s.name),
		zap.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server", zap.String("server", s.name))
	return s.httpServer.Shutdown(ctx)
}
