package main

import (
	"log/slog"
	"os"

	"github.com/todd-jang/swap-reporting-mvp/internal/config"
	"github.com/todd-jang/swap-reporting-mvp/internal/infrastructure"
	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/reportgen"
	"github.com/todd-jang/swap-reporting-mvp/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "service", "reportgen", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{DefaultPort: 8003, Storage: true})
	if err != nil {
		return err
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}

	sys := reportgen.New(
		reportgen.NewStore(infra.Database.Connection(), infra.Logger),
		infra.Storage,
		pipeline.NewHTTPSubmission(cfg.Pipeline.Endpoints.Submission, cfg.Pipeline.SubmitTimeoutDuration()),
		pipeline.NewHTTPErrorSink(cfg.Pipeline.Endpoints.ErrorManager, cfg.Pipeline.ForwardTimeoutDuration()),
		cfg.Pagination,
		infra.Logger,
	)

	return service.New("reportgen", cfg, infra, sys.Handler().Routes()).Run()
}
