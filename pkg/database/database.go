// Package database manages the PostgreSQL connection pool each stage
// service shares across its stores, tied into lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/todd-jang/swap-reporting-mvp/pkg/lifecycle"
)

// System exposes the connection pool and its lifecycle hooks.
type System interface {
	// Connection returns the pool. Stage stores hold this directly.
	Connection() *sql.DB
	// Ping verifies connectivity within the configured timeout.
	Ping(ctx context.Context) error
	// Start registers startup and shutdown hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type pool struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens a pool through the pgx stdlib driver and applies the
// configured limits. No connection is established until Start's ping;
// sql.Open only validates the DSN.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &pool{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (p *pool) Connection() *sql.DB {
	return p.conn
}

func (p *pool) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, p.connTimeout)
	defer cancel()
	return p.conn.PingContext(pingCtx)
}

// Start verifies connectivity during startup and closes the pool once
// shutdown is signalled. A failed startup ping is logged but does not
// abort the service; the health endpoint keeps reporting the pool as
// unready until a ping succeeds.
func (p *pool) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		if err := p.Ping(lc.Context()); err != nil {
			p.logger.Error("database ping failed", "error", err)
			return
		}

		p.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := p.conn.Close(); err != nil {
			p.logger.Error("database close failed", "error", err)
			return
		}

		p.logger.Info("database connection closed")
	})

	return nil
}
