package poller

import (
	"testing"
	"time"

	"stockstreamer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCadence(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 0, 2, 0, time.UTC)

	c, err := ParseCadence(models.MCycleConfig{IntervalSeconds: 5})
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Second), c.Next(now))
	assert.Equal(t, "every 5s", c.String())

	c, err = ParseCadence(models.MCycleConfig{IntervalSeconds: 5, Schedule: "*/10 * * * * *"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 15, 0, 10, 0, time.UTC), c.Next(now))
	assert.Equal(t, "cron */10 * * * * *", c.String())

	c, err = ParseCadence(models.MCycleConfig{Schedule: "@hourly"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC), c.Next(now))

	_, err = ParseCadence(models.MCycleConfig{})
	assert.Error(t, err)

	_, err = ParseCadence(models.MCycleConfig{Schedule: "every day"})
	assert.Error(t, err)
}
