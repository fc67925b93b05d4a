package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnRefused = errors.New("connection refused")

func TestIncremental(t *testing.T) {
	t.Run("single successful try", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 5, func(attempt int) error {
			runs++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, runs)
	})

	t.Run("success from the third attempt", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			if attempt < 3 {
				return Error(errConnRefused, attempt)
			}

			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, runs)
	})

	t.Run("fails when attempt limit is exhausted", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			return Error(errConnRefused, attempt)
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTooManyAttempts))
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, 4, runs)
	})

	t.Run("stops on an unrecoverable error", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			return errConnRefused
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, errConnRefused))
		assert.Equal(t, 1, runs)
	})

	t.Run("context cancellation interrupts waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		runs := 0

		err := Incremental(ctx, time.Hour, 3, func(attempt int) error {
			runs++
			cancel()
			return Error(errConnRefused, attempt)
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, runs)
	})
}

func TestIncrementalAttempts(t *testing.T) {
	a := IncrementalAttempts(10*time.Millisecond, 3)
	assert.Equal(t, 1, a.Current())

	d, stop := a.Next()
	assert.False(t, stop)
	assert.Equal(t, 10*time.Millisecond, d)

	d, stop = a.Next()
	assert.False(t, stop)
	assert.Equal(t, 20*time.Millisecond, d)
	assert.Equal(t, 3, a.Current())

	_, stop = a.Next()
	assert.True(t, stop)
}
