package main

import (
	"log/slog"
	"os"

	"github.com/todd-jang/swap-reporting-mvp/internal/config"
	"github.com/todd-jang/swap-reporting-mvp/internal/infrastructure"
	"github.com/todd-jang/swap-reporting-mvp/internal/ingestion"
	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "service", "ingestion", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{DefaultPort: 8000})
	if err != nil {
		return err
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}

	timeout := cfg.Pipeline.ForwardTimeoutDuration()
	sys := ingestion.New(
		ingestion.NewStore(infra.Database.Connection(), infra.Logger),
		pipeline.NewHTTPNormalization(cfg.Pipeline.Endpoints.Normalization, timeout),
		pipeline.NewHTTPErrorSink(cfg.Pipeline.Endpoints.ErrorManager, timeout),
		infra.Logger,
	)

	return service.New("ingestion", cfg, infra, sys.Handler().Routes()).Run()
}
