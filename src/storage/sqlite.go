package storage

import (
	"context"
	"database/sql"
	"fmt"

	"stockstreamer/src/logger"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "SQLite",
	pragmas: []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS stock_prices (
			time DATETIME NOT NULL,
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

// NewSQLiteStore opens (or creates) the database file at path. ":memory:"
// gives a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string, log *logger.Logger) (*RelationalStockStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// every new connection to :memory: would see an empty database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}

	return &RelationalStockStore{
		DB:      db,
		Logger:  log,
		dialect: sqliteDialect,
	}, nil
}
