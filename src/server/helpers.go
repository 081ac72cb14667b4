package server

import (
	"stockstreamer/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// filterBatch copies batch keeping only the given symbols. Returns nil when
// none of them is present.
func filterBatch(batch *models.FetchBatch, symbols []string) *models.FetchBatch {
	out := &models.FetchBatch{Kind: batch.Kind, Timestamp: batch.Timestamp}

	switch batch.Kind {
	case models.KindPrice:
		out.Prices = make(map[string]decimal.Decimal)
		for sym, v := range batch.Prices {
			if contains(symbols, sym) {
				out.Prices[sym] = v
			}
		}
	case models.KindLogo:
		out.Logos = make(map[string]string)
		for sym, v := range batch.Logos {
			if contains(symbols, sym) {
				out.Logos[sym] = v
			}
		}
	case models.KindHighLow:
		out.HighLows = make(map[string]models.HighLow)
		for sym, v := range batch.HighLows {
			if contains(symbols, sym) {
				out.HighLows[sym] = v
			}
		}
	}

	for _, sym := range batch.Failed {
		if contains(symbols, sym) {
			out.Failed = append(out.Failed, sym)
		}
	}

	if out.Len() == 0 && len(out.Failed) == 0 {
		return nil
	}
	return out
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func containsKind(kinds []models.DataKind, kind models.DataKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
