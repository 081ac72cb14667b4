package storage

import (
	"context"
	"database/sql"
	"fmt"

	"stockstreamer/src/logger"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name:     "PostgreSQL",
	numbered: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS stock_prices (
			time TIMESTAMPTZ NOT NULL,
			stock_name TEXT NOT NULL,
			price NUMERIC NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS stock_prices_time_idx ON stock_prices (time)`,
		`CREATE TABLE IF NOT EXISTS stock_image_urls (
			stock_name TEXT PRIMARY KEY,
			image_url TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stock_highlow (
			stock_name TEXT PRIMARY KEY,
			high_val52wk NUMERIC NOT NULL,
			low_val52wk NUMERIC NOT NULL
		)`,
	},
}

// -----------------------------------------------------------------------------

// NewPostgresStore connects to PostgreSQL through lib/pq and checks the connection
func NewPostgresStore(ctx context.Context, dsn string, log *logger.Logger) (*RelationalStockStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	return &RelationalStockStore{
		DB:      db,
		Logger:  log,
		dialect: postgresDialect,
	}, nil
}
