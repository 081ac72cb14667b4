package grpc_control

import (
	"context"
	"net"
	"testing"
	"time"

	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakePoller struct {
	triggered []models.DataKind
}

func (p *fakePoller) Status() []models.CycleStatus {
	return []models.CycleStatus{
		{Kind: models.KindPrice, Enabled: true, Cadence: "every 5s", Rounds: 12, LastSucceeded: 4, LastFailed: 1,
			LastRoundAt: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)},
		{Kind: models.KindLogo, Enabled: false, Cadence: "disabled"},
	}
}

func (p *fakePoller) RunRound(ctx context.Context, kind models.DataKind) (*models.FetchBatch, error) {
	p.triggered = append(p.triggered, kind)
	return &models.FetchBatch{
		Kind:      kind,
		Timestamp: time.Date(2024, 3, 1, 15, 0, 5, 0, time.UTC),
		HighLows: map[string]models.HighLow{
			"AAPL": {High: decimal.NewFromInt(180), Low: decimal.NewFromInt(120)},
		},
		Failed: []string{"FB"},
	}, nil
}

func newTestClient(t *testing.T, poller Poller) PollerControlClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer()
	RegisterPollerControlServer(srv, NewControlService(poller, []string{"AAPL", "GOOGL"}, logger.NewNop()))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPollerControlClient(conn)
}

func TestGetStatus(t *testing.T) {
	client := newTestClient(t, &fakePoller{})

	res, err := client.GetStatus(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	m := res.AsMap()
	assert.EqualValues(t, 2, m["symbols"])

	cycles := m["cycles"].([]interface{})
	require.Len(t, cycles, 2)
	price := cycles[0].(map[string]interface{})
	assert.Equal(t, "price", price["kind"])
	assert.Equal(t, "every 5s", price["cadence"])
	assert.EqualValues(t, 12, price["rounds"])
	assert.EqualValues(t, 1, price["last_failed"])
	assert.Equal(t, "2024-03-01T15:00:00Z", price["last_round_at"])

	logo := cycles[1].(map[string]interface{})
	assert.Equal(t, false, logo["enabled"])
	assert.Equal(t, "", logo["last_round_at"])
}

func TestTriggerRound(t *testing.T) {
	poller := &fakePoller{}
	client := newTestClient(t, poller)

	res, err := client.TriggerRound(context.Background(), wrapperspb.String("highlow"))
	require.NoError(t, err)
	assert.Equal(t, []models.DataKind{models.KindHighLow}, poller.triggered)

	m := res.AsMap()
	assert.Equal(t, "highlow", m["kind"])
	assert.EqualValues(t, 1, m["succeeded"])
	assert.Equal(t, []interface{}{"FB"}, m["failed"])
	values := m["values"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"high": "180", "low": "120"}, values["AAPL"])
}

func TestTriggerRoundUnknownKind(t *testing.T) {
	poller := &fakePoller{}
	client := newTestClient(t, poller)

	_, err := client.TriggerRound(context.Background(), wrapperspb.String("volume"))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, poller.triggered)
}

func TestListSymbols(t *testing.T) {
	client := newTestClient(t, &fakePoller{})

	res, err := client.ListSymbols(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"AAPL", "GOOGL"}, res.AsSlice())
}
