package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapper_TripsAfterFailureRatio(t *testing.T) {
	cfg := DefaultConfig("test-source")
	cfg.Timeout = time.Hour
	w := NewWrapper(cfg)

	failing := func() (interface{}, error) { return nil, errors.New("down") }
	for i := 0; i < 3; i++ {
		_, err := w.ExecuteWithContext(context.Background(), failing)
		require.Error(t, err)
	}

	assert.True(t, w.IsOpen())

	_, err := w.ExecuteWithContext(context.Background(), func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestWrapper_StaysClosedBelowMinRequests(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-source"))

	_, err := w.ExecuteWithContext(context.Background(), func() (interface{}, error) { return nil, errors.New("down") })
	require.Error(t, err)

	assert.Equal(t, gobreaker.StateClosed, w.State())
	assert.Equal(t, "test-source", w.Name())
}

func TestWrapper_CanceledContextSkipsCall(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-source"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := w.ExecuteWithContext(ctx, func() (interface{}, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
