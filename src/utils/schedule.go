package utils

import "github.com/robfig/cron/v3"

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule accepts standard five field cron expressions, an optional
// leading seconds field, and descriptors such as "@hourly" or "@every 30s".
func ParseSchedule(expr string) (cron.Schedule, error) {
	return scheduleParser.Parse(expr)
}
