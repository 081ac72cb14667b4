package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockstreamer/src/helpers"
	"stockstreamer/src/interfaces"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"github.com/shopspring/decimal"
)

const (
	tablePrices  = "stock_prices"
	tableLogos   = "stock_image_urls"
	tableHighLow = "stock_highlow"
)

// dialect carries what differs between the supported databases.
type dialect struct {
	name     string
	numbered bool // $1, $2 ... instead of ?
	schema   []string
	pragmas  []string
}

// -----------------------------------------------------------------------------

// RelationalStockStore persists prices, logos and 52 week high/low values
// through database/sql.
type RelationalStockStore struct {
	DB      *sql.DB
	Logger  *logger.Logger
	dialect dialect
}

var (
	_ interfaces.IStockStore  = (*RelationalStockStore)(nil)
	_ interfaces.IStockReader = (*RelationalStockStore)(nil)
)

// -----------------------------------------------------------------------------

// NewStore opens the store selected by cfg.Storage.DBType
func NewStore(ctx context.Context, cfg *models.MConfig, log *logger.Logger) (*RelationalStockStore, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresStore(ctx, cfg.Storage.DBConnectionString, log)
	case "sqlite", "":
		return NewSQLiteStore(ctx, cfg.Storage.DBPath, log)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Storage.DBType)
	}
}

// -----------------------------------------------------------------------------

func (s *RelationalStockStore) Initialize(ctx context.Context) error {
	for _, pragma := range s.dialect.pragmas {
		if _, err := s.DB.ExecContext(ctx, pragma); err != nil {
			s.Logger.Warning("Failed to apply %q: %v", pragma, err)
		}
	}

	for _, stmt := range s.dialect.schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	s.Logger.Info("%s store initialized", s.dialect.name)
	return nil
}

// -----------------------------------------------------------------------------

// rebind turns ? placeholders into $n for dialects that need it.
func (s *RelationalStockStore) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

func (s *RelationalStockStore) RecordPrice(ctx context.Context, symbol string, ts time.Time, price decimal.Decimal) error {
	query := s.rebind(`INSERT INTO stock_prices (time, stock_name, price) VALUES (?, ?, ?)`)
	if _, err := s.DB.ExecContext(ctx, query, ts.UTC(), symbol, price); err != nil {
		return helpers.NewStoreWriteError(tablePrices, symbol, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *RelationalStockStore) UpsertLogoURL(ctx context.Context, symbol, url string) error {
	query := s.rebind(`
		INSERT INTO stock_image_urls (stock_name, image_url)
		VALUES (?, ?)
		ON CONFLICT (stock_name) DO UPDATE SET
			image_url = EXCLUDED.image_url
	`)
	return s.upsert(ctx, tableLogos, symbol, query, symbol, url)
}

// -----------------------------------------------------------------------------

func (s *RelationalStockStore) UpsertHighLow(ctx context.Context, symbol string, high, low decimal.Decimal) error {
	query := s.rebind(`
		INSERT INTO stock_highlow (stock_name, high_val52wk, low_val52wk)
		VALUES (?, ?, ?)
		ON CONFLICT (stock_name) DO UPDATE SET
			high_val52wk = EXCLUDED.high_val52wk,
			low_val52wk = EXCLUDED.low_val52wk
	`)
	return s.upsert(ctx, tableHighLow, symbol, query, symbol, high, low)
}

// -----------------------------------------------------------------------------

// upsert runs a single insert-or-update statement in its own transaction so
// readers see either the old row or the new one.
func (s *RelationalStockStore) upsert(ctx context.Context, table, symbol, query string, args ...interface{}) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewStoreWriteError(table, symbol, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return helpers.NewStoreWriteError(table, symbol, err)
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewStoreWriteError(table, symbol, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reads (dashboard)
// -----------------------------------------------------------------------------

// RecentPrices returns every price recorded at or after since, ordered by
// symbol then time.
func (s *RelationalStockStore) RecentPrices(ctx context.Context, since time.Time) ([]models.PricePoint, error) {
	query := s.rebind(`
		SELECT time, stock_name, price FROM stock_prices
		WHERE time >= ?
		ORDER BY stock_name, time
	`)
	rows, err := s.DB.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query stock_prices: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var raw interface{}
		var p models.PricePoint
		if err := rows.Scan(&raw, &p.Symbol, &p.Price); err != nil {
			return nil, err
		}
		if p.Timestamp, err = toTime(raw); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// -----------------------------------------------------------------------------

func (s *RelationalStockStore) LogoURLs(ctx context.Context) ([]models.LogoRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT stock_name, image_url FROM stock_image_urls ORDER BY stock_name`)
	if err != nil {
		return nil, fmt.Errorf("query stock_image_urls: %w", err)
	}
	defer rows.Close()

	var records []models.LogoRecord
	for rows.Next() {
		var r models.LogoRecord
		if err := rows.Scan(&r.Symbol, &r.URL); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// -----------------------------------------------------------------------------

func (s *RelationalStockStore) HighLows(ctx context.Context) ([]models.HighLowRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT stock_name, high_val52wk, low_val52wk FROM stock_highlow ORDER BY stock_name`)
	if err != nil {
		return nil, fmt.Errorf("query stock_highlow: %w", err)
	}
	defer rows.Close()

	var records []models.HighLowRecord
	for rows.Next() {
		var r models.HighLowRecord
		if err := rows.Scan(&r.Symbol, &r.High, &r.Low); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// -----------------------------------------------------------------------------

func (s *RelationalStockStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// toTime normalises the driver's representation of a timestamp column.
func toTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	}
	return time.Time{}, fmt.Errorf("unsupported time value %T", v)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
