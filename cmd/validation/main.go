package main

import (
	"log/slog"
	"os"

	"github.com/todd-jang/swap-reporting-mvp/internal/config"
	"github.com/todd-jang/swap-reporting-mvp/internal/infrastructure"
	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/service"
	"github.com/todd-jang/swap-reporting-mvp/internal/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "service", "validation", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{DefaultPort: 8002})
	if err != nil {
		return err
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}

	timeout := cfg.Pipeline.ForwardTimeoutDuration()
	sys := validation.New(
		validation.NewStore(infra.Database.Connection(), infra.Logger),
		pipeline.NewHTTPReportGeneration(cfg.Pipeline.Endpoints.ReportGeneration, timeout),
		pipeline.NewHTTPErrorSink(cfg.Pipeline.Endpoints.ErrorManager, timeout),
		infra.Logger,
	)

	return service.New("validation", cfg, infra, sys.Handler().Routes()).Run()
}
