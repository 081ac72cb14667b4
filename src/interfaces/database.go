package interfaces

import (
	"context"
	"time"

	"stockstreamer/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// IStockStore defines the write side of the persistent store.
// -----------------------------------------------------------------------------

type IStockStore interface {

	// -----------------------------------------------------------------------------

	// Initialize creates the tables if they do not exist yet.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// RecordPrice appends one row to the price history. Never deduplicated.
	RecordPrice(ctx context.Context, symbol string, ts time.Time, price decimal.Decimal) error

	// -----------------------------------------------------------------------------

	// UpsertLogoURL replaces the logo record of symbol atomically.
	UpsertLogoURL(ctx context.Context, symbol, url string) error

	// -----------------------------------------------------------------------------

	// UpsertHighLow replaces the 52 week high/low record of symbol atomically.
	UpsertHighLow(ctx context.Context, symbol string, high, low decimal.Decimal) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}

// -----------------------------------------------------------------------------
// IStockReader defines the queries issued by the dashboard.
// -----------------------------------------------------------------------------

type IStockReader interface {
	RecentPrices(ctx context.Context, since time.Time) ([]models.PricePoint, error)
	LogoURLs(ctx context.Context) ([]models.LogoRecord, error)
	HighLows(ctx context.Context) ([]models.HighLowRecord, error)
}
