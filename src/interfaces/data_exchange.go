package interfaces

import (
	"context"

	"stockstreamer/src/models"
)

// -----------------------------------------------------------------------------
// IRoundPublisher receives every completed polling round (dashboard push,
// cache, ...). Publish must not block the polling cycle for long.
// -----------------------------------------------------------------------------

type IRoundPublisher interface {
	Publish(ctx context.Context, batch *models.FetchBatch) error
}
