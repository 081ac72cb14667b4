package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataKind names one of the three things fetched for a symbol.
type DataKind string

const (
	KindPrice   DataKind = "price"
	KindLogo    DataKind = "logo"
	KindHighLow DataKind = "highlow"
)

// AllKinds lists the kinds in the order the cycles are started.
var AllKinds = []DataKind{KindPrice, KindLogo, KindHighLow}

// ParseDataKind maps a user supplied name to a DataKind.
func ParseDataKind(s string) (DataKind, bool) {
	switch DataKind(s) {
	case KindPrice, KindLogo, KindHighLow:
		return DataKind(s), true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type PricePoint struct {
	Symbol    string          `json:"symbol"`
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

type LogoRecord struct {
	Symbol string `json:"symbol"`
	URL    string `json:"url"`
}

type HighLow struct {
	High decimal.Decimal `json:"high"`
	Low  decimal.Decimal `json:"low"`
}

type HighLowRecord struct {
	Symbol string `json:"symbol"`
	HighLow
}

// -----------------------------------------------------------------------------

// FetchBatch is the outcome of one polling round. Only the map matching Kind
// is populated. Failed lists symbols that were fetched or stored unsuccessfully.
type FetchBatch struct {
	Kind      DataKind                   `json:"kind"`
	Timestamp time.Time                  `json:"timestamp"`
	Prices    map[string]decimal.Decimal `json:"prices,omitempty"`
	Logos     map[string]string          `json:"logos,omitempty"`
	HighLows  map[string]HighLow         `json:"highlows,omitempty"`
	Failed    []string                   `json:"failed,omitempty"`
}

// Len returns the number of symbols with a value in the batch.
func (b *FetchBatch) Len() int {
	switch b.Kind {
	case KindLogo:
		return len(b.Logos)
	case KindHighLow:
		return len(b.HighLows)
	default:
		return len(b.Prices)
	}
}

// Symbols returns the symbols with a value in the batch.
func (b *FetchBatch) Symbols() []string {
	out := make([]string, 0, b.Len())
	switch b.Kind {
	case KindLogo:
		for s := range b.Logos {
			out = append(out, s)
		}
	case KindHighLow:
		for s := range b.HighLows {
			out = append(out, s)
		}
	default:
		for s := range b.Prices {
			out = append(out, s)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// CycleStatus is a point-in-time view of one polling cycle.
type CycleStatus struct {
	Kind          DataKind  `json:"kind"`
	Enabled       bool      `json:"enabled"`
	Cadence       string    `json:"cadence"`
	Rounds        int64     `json:"rounds"`
	SkippedRounds int64     `json:"skipped_rounds"`
	LastRoundAt   time.Time `json:"last_round_at"`
	LastSucceeded int       `json:"last_succeeded"`
	LastFailed    int       `json:"last_failed"`
	Running       bool      `json:"running"`
}
