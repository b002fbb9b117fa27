package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	ginhandler "user-webclient/internal/adapter/gin/handler"
	"user-webclient/internal/adapter/gin/middleware"
	"user-webclient/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
}

// New creates a new server instance. The Gin server is nil when no HTTP port
// is configured.
func New(cfg *config.Config, l *zap.Logger, handler *ginhandler.UserHandler, rateLimiter *middleware.RateLimiter) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
	}
	if cfg.App.HTTPPort != "" {
		s.Gin = SetupGinServer(handler, rateLimiter, cfg.Logger.ServiceName, s.ginAddress(), l)
	}
	return s
}

// Start serves the Gin REST API until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.Gin == nil {
		return nil
	}

	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(lis)
}

// Serve serves the Gin REST API on lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	s.Logger.Info("Gin REST API running", zap.String("address", lis.Addr().String()))

	if err := s.Gin.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the Gin server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.Gin == nil {
		return nil
	}

	s.Logger.Info("shutting down Gin server...")
	return s.Gin.Shutdown(ctx)
}

// ginAddress returns the Gin server address
func (s *Server) ginAddress() string {
	return ":" + s.Config.App.HTTPPort
}
