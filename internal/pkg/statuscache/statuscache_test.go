package statuscache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoadsOnMiss(t *testing.T) {
	var calls int32
	c := New[string](time.Minute, func(ctx context.Context, key string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value-" + key, nil
	})

	got, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "value-u1", got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// Fresh hit, no reload.
	got, err = c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "value-u1", got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetPropagatesLoadError(t *testing.T) {
	c := New[int](time.Minute, func(ctx context.Context, key string) (int, error) {
		return 0, errors.New("upstream down")
	})
	_, err := c.Get(context.Background(), "u1")
	assert.Error(t, err)
}

func TestStaleReadServesOldValueAndRefreshes(t *testing.T) {
	var calls int32
	c := New[int](10*time.Millisecond, func(ctx context.Context, key string) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})

	got, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	time.Sleep(25 * time.Millisecond)

	// Stale: old value served immediately.
	got, err = c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	// The background refresh lands shortly after.
	assert.Eventually(t, func() bool {
		v, err := c.Get(context.Background(), "u1")
		return err == nil && v == 2
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidateForcesReload(t *testing.T) {
	var calls int32
	c := New[int](time.Minute, func(ctx context.Context, key string) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})

	_, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)

	c.Invalidate("u1")

	got, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestPutMarksFresh(t *testing.T) {
	c := New[string](time.Minute, func(ctx context.Context, key string) (string, error) {
		return "loaded", nil
	})
	c.Put("u1", "pushed")

	got, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "pushed", got)
}
