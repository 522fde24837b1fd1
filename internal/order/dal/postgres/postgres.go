package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/microshop/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

const connectTimeout = 10 * time.Second

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

// MustNewClient creates a new Postgres client from postgres.url and,
// when postgres.migrate is set, applies the embedded migrations.
func MustNewClient() *Client {
	config, err := pgxpool.ParseConfig(viper.GetString("postgres.url"))
	if err != nil {
		panic(fmt.Sprintf("failed to parse postgres url: %v", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		panic(err)
	}

	if err := pool.Ping(ctx); err != nil {
		panic(fmt.Sprintf("failed to ping postgres: %v", err))
	}

	if viper.GetBool("postgres.migrate") {
		if err := migrate(ctx, pool); err != nil {
			panic(err)
		}
	}

	slog.Info("Postgres connected", "host", config.ConnConfig.Host, "database", config.ConnConfig.Database)

	return &Client{
		pool: pool,
	}
}

// migrate runs goose over the stdlib adapter of pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, migrations.OrderDir); err != nil &&
		!errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
