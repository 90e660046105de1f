package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/yigit/abroadcrm/internal/config"
	"github.com/yigit/abroadcrm/internal/pkg/logger"
)

const (
	connectTimeout = 10 * time.Second
	txTimeout      = 30 * time.Second
)

// PostgresDB wraps the pgx pool shared by the CRM repositories
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgresDB opens the pool and pings the server before handing it out
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database %s: %w", cfg.Database.DBName, err)
	}
	return &PostgresDB{Pool: pool}, nil
}

// poolConfig maps the database section onto pgxpool settings
func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	lifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("invalid conn_max_lifetime %q: %w", cfg.Database.ConnMaxLifetime, err)
	}

	pc.MaxConns = int32(cfg.Database.MaxOpenConns)
	pc.MinConns = int32(cfg.Database.MaxIdleConns)
	pc.MaxConnLifetime = lifetime
	pc.HealthCheckPeriod = time.Minute
	pc.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		logger.Debug().Uint32("pid", conn.PgConn().PID()).Msg("Opened database connection")
		return nil
	}
	return pc, nil
}

// SQLDB exposes the pool as a database/sql handle for goose.
// Closing the handle leaves the pool open.
func (db *PostgresDB) SQLDB() *sql.DB {
	return stdlib.OpenDBFromPool(db.Pool)
}

// Close shuts the pool down
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// InTx runs fn inside one transaction and commits when it returns nil.
// An error or panic from fn rolls everything back. Without a caller deadline the
// transaction is cut off after txTimeout.
func (db *PostgresDB) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, txTimeout)
		defer cancel()
	}

	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}
