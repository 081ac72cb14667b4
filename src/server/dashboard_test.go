package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	points   []models.PricePoint
	logos    []models.LogoRecord
	highLows []models.HighLowRecord
	err      error
	since    time.Time
}

func (r *fakeReader) RecentPrices(_ context.Context, since time.Time) ([]models.PricePoint, error) {
	r.since = since
	return r.points, r.err
}

func (r *fakeReader) LogoURLs(context.Context) ([]models.LogoRecord, error) {
	return r.logos, r.err
}

func (r *fakeReader) HighLows(context.Context) ([]models.HighLowRecord, error) {
	return r.highLows, r.err
}

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(reader *fakeReader) *DashboardServer {
	gin.SetMode(gin.TestMode)
	cfg := &models.MConfig{
		Host:      "127.0.0.1",
		Port:      8000,
		LogLevel:  "DEBUG",
		Dashboard: models.MDashboardConfig{HistoryDays: 7, Compact: true},
		DataSource: models.MDataSourceConfig{
			Symbols:      []string{"AAPL", "GOOGL"},
			DisplayNames: map[string]string{"AAPL": "Apple", "GOOGL": "Google"},
		},
	}
	s := NewDashboardServer(cfg, reader, logger.NewNop())
	s.Now = func() time.Time { return testNow }
	return s
}

func get(t *testing.T, s *DashboardServer, path string, out interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func point(sym string, minutes int, price int64) models.PricePoint {
	return models.PricePoint{
		Symbol:    sym,
		Timestamp: testNow.Add(time.Duration(minutes) * time.Minute),
		Price:     decimal.NewFromInt(price),
	}
}

// -----------------------------------------------------------------------------

func TestGetPricesReturnsCompactedSeries(t *testing.T) {
	reader := &fakeReader{points: []models.PricePoint{
		point("AAPL", -4, 150), point("AAPL", -3, 150), point("AAPL", -2, 150), point("AAPL", -1, 151),
		point("GOOGL", -2, 2700),
	}}
	s := newTestServer(reader)

	var body struct {
		Series []struct {
			Symbol      string          `json:"symbol"`
			DisplayName string          `json:"display_name"`
			Max         decimal.Decimal `json:"max"`
			Points      []models.PricePoint
		} `json:"series"`
	}
	require.Equal(t, http.StatusOK, get(t, s, "/api/prices", &body))

	assert.Equal(t, testNow.Add(-7*24*time.Hour), reader.since)
	require.Len(t, body.Series, 2)
	assert.Equal(t, "Apple", body.Series[0].DisplayName)
	assert.Len(t, body.Series[0].Points, 3)
	assert.True(t, body.Series[0].Max.Equal(decimal.NewFromInt(151)))
	assert.Equal(t, "Google", body.Series[1].DisplayName)
}

func TestGetPricesDaysParameter(t *testing.T) {
	reader := &fakeReader{}
	s := newTestServer(reader)

	assert.Equal(t, http.StatusOK, get(t, s, "/api/prices?days=2", nil))
	assert.Equal(t, testNow.Add(-48*time.Hour), reader.since)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/prices?days=-1", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/prices?days=week", nil))
}

func TestReaderFailureIsServerError(t *testing.T) {
	s := newTestServer(&fakeReader{err: errors.New("connection refused")})

	assert.Equal(t, http.StatusInternalServerError, get(t, s, "/api/prices", nil))
	assert.Equal(t, http.StatusInternalServerError, get(t, s, "/api/logos", nil))
	assert.Equal(t, http.StatusInternalServerError, get(t, s, "/api/highlow", nil))
}

func TestGetLogosHighLowAndSymbols(t *testing.T) {
	reader := &fakeReader{
		logos: []models.LogoRecord{{Symbol: "AAPL", URL: "https://a/1.png"}},
		highLows: []models.HighLowRecord{{
			Symbol:  "AAPL",
			HighLow: models.HighLow{High: decimal.NewFromInt(180), Low: decimal.NewFromInt(120)},
		}},
	}
	s := newTestServer(reader)

	var logos []models.LogoRecord
	require.Equal(t, http.StatusOK, get(t, s, "/api/logos", &logos))
	assert.Equal(t, reader.logos, logos)

	var highLows []models.HighLowRecord
	require.Equal(t, http.StatusOK, get(t, s, "/api/highlow", &highLows))
	require.Len(t, highLows, 1)
	assert.True(t, highLows[0].High.Equal(decimal.NewFromInt(180)))
	assert.True(t, highLows[0].Low.Equal(decimal.NewFromInt(120)))

	var symbols []map[string]string
	require.Equal(t, http.StatusOK, get(t, s, "/api/symbols", &symbols))
	assert.Equal(t, []map[string]string{
		{"symbol": "AAPL", "display_name": "Apple"},
		{"symbol": "GOOGL", "display_name": "Google"},
	}, symbols)
}

func TestGetHealthIncludesCycles(t *testing.T) {
	s := newTestServer(&fakeReader{})
	s.Status = func() []models.CycleStatus {
		return []models.CycleStatus{{Kind: models.KindPrice, Enabled: true, Rounds: 3}}
	}

	var body struct {
		Status      string               `json:"status"`
		Connections int                  `json:"connections"`
		Cycles      []models.CycleStatus `json:"cycles"`
	}
	require.Equal(t, http.StatusOK, get(t, s, "/api/health", &body))
	assert.Equal(t, "ok", body.Status)
	assert.Zero(t, body.Connections)
	require.Len(t, body.Cycles, 1)
	assert.EqualValues(t, 3, body.Cycles[0].Rounds)
}

// -----------------------------------------------------------------------------
// websocket
// -----------------------------------------------------------------------------

func dial(t *testing.T, s *DashboardServer) *websocket.Conn {
	t.Helper()
	s.StartHub()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.MLatestData {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg models.MLatestData
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func priceBatch() *models.FetchBatch {
	return &models.FetchBatch{
		Kind:      models.KindPrice,
		Timestamp: testNow,
		Prices: map[string]decimal.Decimal{
			"AAPL":  decimal.NewFromInt(150),
			"GOOGL": decimal.NewFromInt(2700),
		},
	}
}

func TestPublishedRoundReachesWebsocketClient(t *testing.T) {
	s := newTestServer(&fakeReader{})
	defer s.Stop(context.Background())
	conn := dial(t, s)

	require.NoError(t, s.Publish(context.Background(), priceBatch()))

	msg := readMessage(t, conn)
	require.Len(t, msg.Batches, 1)
	assert.Equal(t, models.KindPrice, msg.Batches[0].Kind)
	assert.True(t, msg.Batches[0].Prices["AAPL"].Equal(decimal.NewFromInt(150)))
	assert.Len(t, msg.Batches[0].Prices, 2)
}

func TestSubscribeFiltersSymbols(t *testing.T) {
	s := newTestServer(&fakeReader{})
	defer s.Stop(context.Background())
	conn := dial(t, s)

	require.NoError(t, conn.WriteJSON(models.MSubscribeCommand{Command: "subscribe", Symbols: []string{"GOOGL"}}))
	initial := readMessage(t, conn)
	assert.Equal(t, "INITIAL", initial.Type)
	assert.Empty(t, initial.Batches)

	require.NoError(t, s.Publish(context.Background(), priceBatch()))

	msg := readMessage(t, conn)
	assert.Equal(t, "UPDATE", msg.Type)
	require.Len(t, msg.Batches, 1)
	assert.Len(t, msg.Batches[0].Prices, 1)
	assert.Contains(t, msg.Batches[0].Prices, "GOOGL")
}

func TestNewClientReceivesLatestState(t *testing.T) {
	s := newTestServer(&fakeReader{})
	defer s.Stop(context.Background())
	s.StartHub()

	require.NoError(t, s.Publish(context.Background(), priceBatch()))
	require.Eventually(t, func() bool {
		s.stateMutex.RLock()
		defer s.stateMutex.RUnlock()
		return s.latest[models.KindPrice] != nil
	}, 5*time.Second, 10*time.Millisecond)

	conn := dial(t, s)
	msg := readMessage(t, conn)
	assert.Equal(t, "INITIAL", msg.Type)
	require.Len(t, msg.Batches, 1)
	assert.Len(t, msg.Batches[0].Prices, 2)
}

func TestPublishDoesNotBlockWithoutHub(t *testing.T) {
	s := newTestServer(&fakeReader{})

	var err error
	for i := 0; i < cap(s.broadcast)+1; i++ {
		err = s.Publish(context.Background(), priceBatch())
	}
	assert.ErrorIs(t, err, errQueueFull)

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Publish(context.Background(), priceBatch()))
}

func TestFilterBatch(t *testing.T) {
	b := priceBatch()
	b.Failed = []string{"MSFT"}

	assert.Nil(t, filterBatch(b, []string{"TSLA"}))

	only := filterBatch(b, []string{"MSFT"})
	require.NotNil(t, only)
	assert.Empty(t, only.Prices)
	assert.Equal(t, []string{"MSFT"}, only.Failed)
}
