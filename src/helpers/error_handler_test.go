package helpers

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"stockstreamer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFailedUnwrapsToRoot(t *testing.T) {
	transient := NewTransientFetchError("AAPL", models.KindPrice, 503, io.ErrUnexpectedEOF)
	exhausted := NewRetryExhaustedError("fetch price AAPL", 5, transient)
	failed := NewFetchFailedError("AAPL", models.KindPrice, exhausted)

	assert.True(t, errors.Is(failed, io.ErrUnexpectedEOF))
	assert.True(t, IsRetryExhausted(failed))

	var te *TransientFetchError
	require.True(t, errors.As(failed, &te))
	assert.Equal(t, 503, te.StatusCode)
	assert.Equal(t, "fetch price failed for AAPL: fetch price AAPL failed after 5 attempts: fetch price for AAPL: unexpected EOF", failed.Error())
}

func TestStoreWriteErrorMessage(t *testing.T) {
	err := NewStoreWriteError("stock_highlow", "GOOGL", fmt.Errorf("disk full"))
	assert.Equal(t, "write stock_highlow row for GOOGL: disk full", err.Error())
	assert.False(t, IsRetryExhausted(err))
}
