package poller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	datasource "stockstreamer/src/data_source"
	"stockstreamer/src/interfaces"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"github.com/shopspring/decimal"
)

// cycle is the state of one repeating fetch -> persist loop.
type cycle struct {
	kind            models.DataKind
	enabled         bool
	marketHoursOnly bool
	cadence         Cadence

	round sync.Mutex // held for the whole of a round

	mu     sync.Mutex
	status models.CycleStatus
}

func (c *cycle) snapshot() models.CycleStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *cycle) update(fn func(*models.CycleStatus)) {
	c.mu.Lock()
	fn(&c.status)
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// PollingManager runs the price, logo and high/low cycles for a fixed set of
// symbols. Cycles are independent of each other; the rounds of a single cycle
// never overlap.
type PollingManager struct {
	Symbols    []string
	Fetcher    interfaces.IStockFetcher
	Store      interfaces.IStockStore
	Gate       interfaces.IMarketGate
	Publishers []interfaces.IRoundPublisher
	Logger     *logger.Logger
	Now        func() time.Time

	prices   *datasource.FanOutAggregator[decimal.Decimal]
	logos    *datasource.FanOutAggregator[string]
	highLows *datasource.FanOutAggregator[models.HighLow]

	cycles map[models.DataKind]*cycle
	wg     sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewPollingManager(
	cfg *models.MConfig,
	fetcher interfaces.IStockFetcher,
	store interfaces.IStockStore,
	gate interfaces.IMarketGate,
	log *logger.Logger,
) (*PollingManager, error) {

	limit := cfg.Network.ConcurrentRequests
	m := &PollingManager{
		Symbols:  append([]string(nil), cfg.DataSource.Symbols...),
		Fetcher:  fetcher,
		Store:    store,
		Gate:     gate,
		Logger:   log,
		Now:      time.Now,
		prices:   datasource.NewFanOutAggregator[decimal.Decimal](models.KindPrice, limit, log.Named("FanOut")),
		logos:    datasource.NewFanOutAggregator[string](models.KindLogo, limit, log.Named("FanOut")),
		highLows: datasource.NewFanOutAggregator[models.HighLow](models.KindHighLow, limit, log.Named("FanOut")),
		cycles:   make(map[models.DataKind]*cycle, len(models.AllKinds)),
	}

	for _, kind := range models.AllKinds {
		cc := cfg.Polling.Cycle(kind)
		c := &cycle{
			kind:            kind,
			enabled:         !cc.Disabled,
			marketHoursOnly: cc.MarketHoursOnly,
		}
		if c.enabled {
			cadence, err := ParseCadence(cc)
			if err != nil {
				return nil, fmt.Errorf("%s cycle: %w", kind, err)
			}
			c.cadence = cadence
		}
		c.status = models.CycleStatus{Kind: kind, Enabled: c.enabled, Cadence: describe(c.cadence)}
		m.cycles[kind] = c
	}

	return m, nil
}

func describe(c Cadence) string {
	if c == nil {
		return "disabled"
	}
	return c.String()
}

// -----------------------------------------------------------------------------

// AddPublisher registers a consumer of completed rounds. Call before Start.
func (m *PollingManager) AddPublisher(p interfaces.IRoundPublisher) {
	m.Publishers = append(m.Publishers, p)
}

// -----------------------------------------------------------------------------

// Start launches one goroutine per enabled cycle. They stop when ctx is done.
func (m *PollingManager) Start(ctx context.Context) {
	for _, kind := range models.AllKinds {
		c := m.cycles[kind]
		if !c.enabled {
			m.Logger.Info("%s cycle disabled", kind)
			continue
		}

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runCycle(ctx, c)
		}()
	}
}

// Wait blocks until every started cycle has returned.
func (m *PollingManager) Wait() {
	m.wg.Wait()
}

// Run starts the cycles and blocks until ctx is cancelled and they have exited.
func (m *PollingManager) Run(ctx context.Context) {
	m.Start(ctx)
	m.Wait()
}

// -----------------------------------------------------------------------------

func (m *PollingManager) runCycle(ctx context.Context, c *cycle) {
	m.Logger.Info("Starting %s cycle (%s) for %d symbols", c.kind, c.cadence, len(m.Symbols))

	for {
		if ctx.Err() != nil {
			break
		}

		m.scheduledRound(ctx, c)

		wait := c.cadence.Next(m.now()).Sub(m.now())
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	m.Logger.Info("%s cycle stopped", c.kind)
}

// -----------------------------------------------------------------------------

func (m *PollingManager) scheduledRound(ctx context.Context, c *cycle) {
	if c.marketHoursOnly && m.Gate != nil && !m.Gate.AnyMarketOpen() {
		m.Logger.Debug("Markets closed, skipping %s round", c.kind)
		c.update(func(s *models.CycleStatus) { s.SkippedRounds++ })
		return
	}

	if _, err := m.RunRound(ctx, c.kind); err != nil {
		m.Logger.Warning("%s round aborted: %v", c.kind, err)
	}
}

// -----------------------------------------------------------------------------

// RunRound performs one round of the given cycle now. It waits for a round of
// the same cycle that is already in progress.
func (m *PollingManager) RunRound(ctx context.Context, kind models.DataKind) (*models.FetchBatch, error) {
	c, ok := m.cycles[kind]
	if !ok {
		return nil, fmt.Errorf("unknown data kind %q", kind)
	}

	c.round.Lock()
	defer c.round.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.update(func(s *models.CycleStatus) { s.Running = true })
	start := time.Now()

	var batch *models.FetchBatch
	switch kind {
	case models.KindPrice:
		batch = m.priceRound(ctx)
	case models.KindLogo:
		batch = m.logoRound(ctx)
	case models.KindHighLow:
		batch = m.highLowRound(ctx)
	}

	c.update(func(s *models.CycleStatus) {
		s.Running = false
		s.Rounds++
		s.LastRoundAt = batch.Timestamp
		s.LastSucceeded = batch.Len()
		s.LastFailed = len(batch.Failed)
	})

	m.Logger.Info("%s round done in %s: %d stored, %d failed",
		kind, time.Since(start).Round(time.Millisecond), batch.Len(), len(batch.Failed))

	m.publish(ctx, batch)
	return batch, nil
}

// -----------------------------------------------------------------------------

func (m *PollingManager) priceRound(ctx context.Context) *models.FetchBatch {
	// one timestamp for every price of the round
	ts := m.now().UTC()
	prices, failed := m.prices.Collect(ctx, m.Symbols, m.Fetcher.FetchPrice)

	failed = persist(ctx, m, prices, failed, func(ctx context.Context, sym string, p decimal.Decimal) error {
		return m.Store.RecordPrice(ctx, sym, ts, p)
	})
	return &models.FetchBatch{Kind: models.KindPrice, Timestamp: ts, Prices: prices, Failed: failed}
}

func (m *PollingManager) logoRound(ctx context.Context) *models.FetchBatch {
	ts := m.now().UTC()
	logos, failed := m.logos.Collect(ctx, m.Symbols, m.Fetcher.FetchLogoURL)

	failed = persist(ctx, m, logos, failed, m.Store.UpsertLogoURL)
	return &models.FetchBatch{Kind: models.KindLogo, Timestamp: ts, Logos: logos, Failed: failed}
}

func (m *PollingManager) highLowRound(ctx context.Context) *models.FetchBatch {
	ts := m.now().UTC()
	highLows, failed := m.highLows.Collect(ctx, m.Symbols, m.Fetcher.FetchHighLow)

	failed = persist(ctx, m, highLows, failed, func(ctx context.Context, sym string, hl models.HighLow) error {
		return m.Store.UpsertHighLow(ctx, sym, hl.High, hl.Low)
	})
	return &models.FetchBatch{Kind: models.KindHighLow, Timestamp: ts, HighLows: highLows, Failed: failed}
}

// -----------------------------------------------------------------------------

// persist writes every result of a round. A symbol whose write fails is
// removed from results and added to the returned failed list; the remaining
// symbols are still written.
func persist[T any](
	ctx context.Context,
	m *PollingManager,
	results map[string]T,
	failed []string,
	write func(context.Context, string, T) error,
) []string {

	symbols := make([]string, 0, len(results))
	for sym := range results {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		if err := write(ctx, sym, results[sym]); err != nil {
			m.Logger.Error("Failed to persist %s: %v", sym, err)
			delete(results, sym)
			failed = append(failed, sym)
		}
	}

	sort.Strings(failed)
	return failed
}

// -----------------------------------------------------------------------------

func (m *PollingManager) publish(ctx context.Context, batch *models.FetchBatch) {
	for _, p := range m.Publishers {
		if err := p.Publish(ctx, batch); err != nil {
			m.Logger.Warning("Failed to publish %s round: %v", batch.Kind, err)
		}
	}
}

// -----------------------------------------------------------------------------

// Status returns one entry per cycle, in price, logo, high/low order.
func (m *PollingManager) Status() []models.CycleStatus {
	out := make([]models.CycleStatus, 0, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		out = append(out, m.cycles[kind].snapshot())
	}
	return out
}

func (m *PollingManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
