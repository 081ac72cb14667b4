package datasource

import (
	"context"
	"sort"

	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"golang.org/x/sync/errgroup"
)

// FanOutAggregator runs one fetch per symbol concurrently and gathers the
// successful results once every task has finished.
type FanOutAggregator[T any] struct {
	Kind          models.DataKind
	MaxConcurrent int // <= 0 means one goroutine per symbol at once
	Logger        *logger.Logger
}

func NewFanOutAggregator[T any](kind models.DataKind, maxConcurrent int, log *logger.Logger) *FanOutAggregator[T] {
	return &FanOutAggregator[T]{
		Kind:          kind,
		MaxConcurrent: maxConcurrent,
		Logger:        log,
	}
}

// -----------------------------------------------------------------------------

// FetchAll returns symbol -> result for every symbol whose fetch succeeded.
// Failed symbols are logged and left out.
func (a *FanOutAggregator[T]) FetchAll(ctx context.Context, symbols []string, fetchOne func(context.Context, string) (T, error)) map[string]T {
	results, _ := a.Collect(ctx, symbols, fetchOne)
	return results
}

// -----------------------------------------------------------------------------

type outcome[T any] struct {
	value T
	err   error
}

// Collect is FetchAll that also reports the failed symbols, sorted.
func (a *FanOutAggregator[T]) Collect(ctx context.Context, symbols []string, fetchOne func(context.Context, string) (T, error)) (map[string]T, []string) {
	unique := dedupe(symbols)
	outcomes := make([]outcome[T], len(unique))

	// Tasks never return an error so one bad symbol cannot cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	if a.MaxConcurrent > 0 {
		g.SetLimit(a.MaxConcurrent)
	}

	for i, sym := range unique {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i].err = err
				return nil
			}
			v, err := fetchOne(gctx, sym)
			outcomes[i] = outcome[T]{value: v, err: err}
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]T, len(unique))
	var failed []string
	for i, sym := range unique {
		if err := outcomes[i].err; err != nil {
			a.Logger.Warning("Error fetching %s for %s: %v", a.Kind, sym, err)
			failed = append(failed, sym)
			continue
		}
		results[sym] = outcomes[i].value
	}
	sort.Strings(failed)

	a.Logger.Info("Fetched %s for %d/%d symbols", a.Kind, len(results), len(unique))
	return results, failed
}

// -----------------------------------------------------------------------------

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
