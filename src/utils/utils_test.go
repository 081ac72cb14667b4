package utils

import (
	"testing"
	"time"

	"stockstreamer/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMICForSymbol(t *testing.T) {
	assert.Equal(t, "xnys", MICForSymbol("AAPL"))
	assert.Equal(t, "xnys", MICForSymbol("BRK.B"))
	assert.Equal(t, "xlon", MICForSymbol("VOD.L"))
	assert.Equal(t, "xtks", MICForSymbol("7203.T"))
}

func TestFallbackCalendarHours(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	tc := &TradingCalendar{MIC: "xnys", Fallback: true, Timezone: ny}

	// Wednesday 2024-03-13
	assert.True(t, tc.IsOpen(time.Date(2024, 3, 13, 10, 0, 0, 0, ny)))
	assert.False(t, tc.IsOpen(time.Date(2024, 3, 13, 9, 29, 0, 0, ny)))
	assert.False(t, tc.IsOpen(time.Date(2024, 3, 13, 16, 0, 0, 0, ny)))
	// Saturday
	assert.False(t, tc.IsOpen(time.Date(2024, 3, 16, 12, 0, 0, 0, ny)))
}

func TestMarketSchedulerUsesClock(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ms := &MarketScheduler{
		Calendars: map[string]*TradingCalendar{"xnys": {MIC: "xnys", Fallback: true, Timezone: ny}},
		Logger:    logger.NewNop(),
	}

	ms.Now = func() time.Time { return time.Date(2024, 3, 13, 11, 0, 0, 0, ny) }
	assert.True(t, ms.AnyMarketOpen())

	ms.Now = func() time.Time { return time.Date(2024, 3, 13, 20, 0, 0, 0, ny) }
	assert.False(t, ms.AnyMarketOpen())
}

func TestMapSymbolsDeduplicatesExchanges(t *testing.T) {
	ms := NewMarketScheduler([]string{"AAPL", "GOOGL", "VOD.L"}, logger.NewNop())
	assert.Len(t, ms.Calendars, 2)
}

func TestParseSchedule(t *testing.T) {
	from := time.Date(2024, 3, 13, 10, 15, 0, 0, time.UTC)

	s, err := ParseSchedule("0 * * * *")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 13, 11, 0, 0, 0, time.UTC), s.Next(from))

	s, err = ParseSchedule("@every 30s")
	require.NoError(t, err)
	assert.Equal(t, from.Add(30*time.Second), s.Next(from))

	_, err = ParseSchedule("not a schedule")
	assert.Error(t, err)
}
