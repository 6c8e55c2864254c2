package main

import (
	"log/slog"
	"os"

	"github.com/todd-jang/swap-reporting-mvp/internal/config"
	"github.com/todd-jang/swap-reporting-mvp/internal/infrastructure"
	"github.com/todd-jang/swap-reporting-mvp/internal/normalization"
	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "service", "normalization", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{DefaultPort: 8001})
	if err != nil {
		return err
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}

	timeout := cfg.Pipeline.ForwardTimeoutDuration()
	sys := normalization.New(
		normalization.NewStore(infra.Database.Connection(), infra.Logger),
		pipeline.NewHTTPValidation(cfg.Pipeline.Endpoints.Validation, timeout),
		pipeline.NewHTTPErrorSink(cfg.Pipeline.Endpoints.ErrorManager, timeout),
		infra.Logger,
	)

	return service.New("normalization", cfg, infra, sys.Handler().Routes()).Run()
}
