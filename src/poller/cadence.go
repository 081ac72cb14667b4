package poller

import (
	"fmt"
	"time"

	"stockstreamer/src/models"
	"stockstreamer/src/utils"

	"github.com/robfig/cron/v3"
)

// Cadence decides when the next round of a cycle starts.
type Cadence interface {
	Next(now time.Time) time.Time
	String() string
}

// -----------------------------------------------------------------------------

// IntervalCadence waits a fixed duration after each round.
type IntervalCadence struct {
	Every time.Duration
}

func (c IntervalCadence) Next(now time.Time) time.Time {
	return now.Add(c.Every)
}

func (c IntervalCadence) String() string {
	return "every " + c.Every.String()
}

// -----------------------------------------------------------------------------

// CronCadence follows a cron expression, e.g. "*/5 * * * * *" or "@hourly".
type CronCadence struct {
	Expr     string
	schedule cron.Schedule
}

func NewCronCadence(expr string) (*CronCadence, error) {
	schedule, err := utils.ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	return &CronCadence{Expr: expr, schedule: schedule}, nil
}

func (c *CronCadence) Next(now time.Time) time.Time {
	return c.schedule.Next(now)
}

func (c *CronCadence) String() string {
	return "cron " + c.Expr
}

// -----------------------------------------------------------------------------

// ParseCadence builds the cadence of one cycle. A schedule wins over an interval.
func ParseCadence(cfg models.MCycleConfig) (Cadence, error) {
	if cfg.Schedule != "" {
		return NewCronCadence(cfg.Schedule)
	}
	if cfg.IntervalSeconds <= 0 {
		return nil, fmt.Errorf("interval_seconds must be positive, got %d", cfg.IntervalSeconds)
	}
	return IntervalCadence{Every: time.Duration(cfg.IntervalSeconds) * time.Second}, nil
}
