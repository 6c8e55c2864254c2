package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/todd-jang/swap-reporting-mvp/internal/config"
	"github.com/todd-jang/swap-reporting-mvp/internal/errormgr"
	"github.com/todd-jang/swap-reporting-mvp/internal/infrastructure"
	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/internal/service"
	"github.com/todd-jang/swap-reporting-mvp/pkg/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "service", "errormgr", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{DefaultPort: 8005})
	if err != nil {
		return err
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}

	var verifier middleware.TokenVerifier
	if cfg.Auth.Enabled() {
		v, err := middleware.NewOIDCVerifier(context.Background(), cfg.Auth.Issuer, cfg.Auth.Audience)
		if err != nil {
			return err
		}
		verifier = v
	}

	timeout := cfg.Pipeline.ForwardTimeoutDuration()
	sys := errormgr.New(
		errormgr.NewStore(infra.Database.Connection(), infra.Logger),
		pipeline.NewHTTPIngestion(cfg.Pipeline.Endpoints.Ingestion, timeout),
		pipeline.NewHTTPNormalization(cfg.Pipeline.Endpoints.Normalization, timeout),
		cfg.Pagination,
		verifier,
		infra.Logger,
	)

	return service.New("errormgr", cfg, infra, sys.Handler().Routes()).Run()
}
