// Package service provides the shared HTTP bootstrap for stage binaries:
// router assembly, middleware stack, health endpoint, and signal-driven
// lifecycle.
package service

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/todd-jang/swap-reporting-mvp/internal/config"
	"github.com/todd-jang/swap-reporting-mvp/internal/infrastructure"
	"github.com/todd-jang/swap-reporting-mvp/pkg/middleware"
	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
	"net/http"
)

// Service hosts one pipeline stage behind an HTTP server.
type Service struct {
	name  string
	cfg   *config.Config
	infra *infrastructure.Infrastructure
	http  *httpServer
}

// New assembles a stage service from its route groups. The health endpoint
// and request logging are attached here so every stage gets them uniformly.
func New(
	name string,
	cfg *config.Config,
	infra *infrastructure.Infrastructure,
	groups ...routes.Group,
) *Service {
	mux := http.NewServeMux()
	routes.Register(mux, groups...)
	mux.HandleFunc("GET /health", healthHandler(infra))

	stack := middleware.New()
	stack.Use(middleware.CORS(&cfg.CORS))
	stack.Use(middleware.Logger(infra.Logger))

	return &Service{
		name:  name,
		cfg:   cfg,
		infra: infra,
		http:  newHTTPServer(&cfg.Server, stack.Apply(mux), infra.Logger),
	}
}

// Logger returns the service's root logger.
func (s *Service) Logger() *slog.Logger {
	return s.infra.Logger
}

// Run starts the infrastructure and HTTP server, blocks until SIGINT or
// SIGTERM, then performs a coordinated shutdown.
func (s *Service) Run() error {
	s.infra.Logger.Info(
		"service starting",
		"service", s.name,
		"addr", s.cfg.Server.Addr(),
		"version", s.cfg.Version,
		"env", s.cfg.Env(),
	)

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready", "service", s.name)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	s.infra.Logger.Info("initiating shutdown", "service", s.name)
	return s.infra.Lifecycle.Shutdown(s.cfg.ShutdownTimeoutDuration())
}
