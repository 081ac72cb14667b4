package analysis

import (
	"sort"

	"stockstreamer/src/models"

	"github.com/shopspring/decimal"
)

// Series is one symbol's price history as served to the dashboard.
type Series struct {
	Symbol      string              `json:"symbol"`
	DisplayName string              `json:"display_name"`
	Points      []models.PricePoint `json:"points"`
	Max         decimal.Decimal     `json:"max"`
}

// -----------------------------------------------------------------------------

// CompactSeries drops the points of a flat run that carry no information for a
// line chart. A point is kept when its price differs from the previous one,
// when the next point's price differs from its own, or when it is the first
// or last point. Input must belong to one symbol and be ordered by time.
func CompactSeries(points []models.PricePoint) []models.PricePoint {
	n := len(points)
	if n <= 2 {
		return append([]models.PricePoint(nil), points...)
	}

	changed := make([]bool, n)
	changed[0] = true
	for i := 1; i < n; i++ {
		changed[i] = !points[i].Price.Equal(points[i-1].Price)
	}

	out := make([]models.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		keep := changed[i] || i == n-1 || changed[i+1]
		if keep {
			out = append(out, points[i])
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// BuildSeries groups points by symbol (sorted by symbol, each by time),
// optionally compacts them and attaches display names and maxima.
func BuildSeries(points []models.PricePoint, displayNames map[string]string, compact bool) []Series {
	grouped := make(map[string][]models.PricePoint)
	for _, p := range points {
		grouped[p.Symbol] = append(grouped[p.Symbol], p)
	}

	symbols := make([]string, 0, len(grouped))
	for sym := range grouped {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	series := make([]Series, 0, len(symbols))
	for _, sym := range symbols {
		pts := grouped[sym]
		sort.SliceStable(pts, func(i, j int) bool {
			return pts[i].Timestamp.Before(pts[j].Timestamp)
		})
		if compact {
			pts = CompactSeries(pts)
		}

		name := displayNames[sym]
		if name == "" {
			name = sym
		}

		series = append(series, Series{
			Symbol:      sym,
			DisplayName: name,
			Points:      pts,
			Max:         MaxPrice(pts),
		})
	}
	return series
}

// -----------------------------------------------------------------------------

func MaxPrice(points []models.PricePoint) decimal.Decimal {
	if len(points) == 0 {
		return decimal.Zero
	}
	max := points[0].Price
	for _, p := range points[1:] {
		if p.Price.GreaterThan(max) {
			max = p.Price
		}
	}
	return max
}
