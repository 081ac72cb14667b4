package interfaces

import (
	"context"

	"stockstreamer/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// IStockFetcher fetches one kind of data for one symbol from a remote API.
// Each call retries internally and returns a *helpers.FetchFailedError once
// the attempts are exhausted.
// -----------------------------------------------------------------------------

type IStockFetcher interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// -----------------------------------------------------------------------------

	FetchHighLow(ctx context.Context, symbol string) (models.HighLow, error)

	// -----------------------------------------------------------------------------

	FetchLogoURL(ctx context.Context, symbol string) (string, error)
}

// -----------------------------------------------------------------------------
// IMarketGate reports whether price rounds should run right now.
// -----------------------------------------------------------------------------

type IMarketGate interface {
	AnyMarketOpen() bool
}
