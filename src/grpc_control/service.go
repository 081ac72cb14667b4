package grpc_control

import (
	"context"
	"errors"
	"sort"
	"time"

	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Poller is the part of the polling manager the control service drives.
type Poller interface {
	Status() []models.CycleStatus
	RunRound(ctx context.Context, kind models.DataKind) (*models.FetchBatch, error)
}

// ControlService implements the PollerControlServer interface
type ControlService struct {
	UnimplementedPollerControlServer
	Poller  Poller
	Symbols []string
	Logger  *logger.Logger
}

var _ PollerControlServer = (*ControlService)(nil)

// NewControlService creates a new instance of ControlService
func NewControlService(poller Poller, symbols []string, log *logger.Logger) *ControlService {
	return &ControlService{
		Poller:  poller,
		Symbols: symbols,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	var cycles []interface{}
	for _, c := range s.Poller.Status() {
		cycles = append(cycles, map[string]interface{}{
			"kind":           string(c.Kind),
			"enabled":        c.Enabled,
			"cadence":        c.Cadence,
			"rounds":         c.Rounds,
			"skipped_rounds": c.SkippedRounds,
			"last_round_at":  formatTime(c.LastRoundAt),
			"last_succeeded": c.LastSucceeded,
			"last_failed":    c.LastFailed,
			"running":        c.Running,
		})
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"symbols": len(s.Symbols),
		"cycles":  cycles,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// TriggerRound runs one round of the named cycle immediately. It waits for a
// round already in progress on that cycle.
func (s *ControlService) TriggerRound(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	kind, ok := models.ParseDataKind(req.GetValue())
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown kind %q, want one of price, logo, highlow", req.GetValue())
	}

	s.Logger.Info("gRPC: TriggerRound %s", kind)
	batch, err := s.Poller.RunRound(ctx, kind)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, status.FromContextError(err).Err()
		}
		return nil, status.Errorf(codes.Internal, "round failed: %v", err)
	}

	out, err := structpb.NewStruct(batchSummary(batch))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode round: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListSymbols(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	values := make([]interface{}, len(s.Symbols))
	for i, sym := range s.Symbols {
		values[i] = sym
	}
	return structpb.NewList(values)
}

// -----------------------------------------------------------------------------

func batchSummary(b *models.FetchBatch) map[string]interface{} {
	values := make(map[string]interface{}, b.Len())
	switch b.Kind {
	case models.KindPrice:
		for sym, p := range b.Prices {
			values[sym] = p.String()
		}
	case models.KindLogo:
		for sym, u := range b.Logos {
			values[sym] = u
		}
	case models.KindHighLow:
		for sym, hl := range b.HighLows {
			values[sym] = map[string]interface{}{"high": hl.High.String(), "low": hl.Low.String()}
		}
	}

	failed := append([]string(nil), b.Failed...)
	sort.Strings(failed)
	failedList := make([]interface{}, len(failed))
	for i, sym := range failed {
		failedList[i] = sym
	}

	return map[string]interface{}{
		"kind":      string(b.Kind),
		"timestamp": formatTime(b.Timestamp),
		"succeeded": b.Len(),
		"failed":    failedList,
		"values":    values,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
