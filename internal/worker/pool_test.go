package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Run_CoversEveryIndex(t *testing.T) {
	pool := NewPool(4)

	results := make([]int, 100)
	err := pool.Run(context.Background(), len(results), func(_ context.Context, i int) error {
		results[i] = i * 2
		return nil
	})
	require.NoError(t, err)

	for i, v := range results {
		assert.Equal(t, i*2, v)
	}
}

func TestPool_Run_EmptyBatch(t *testing.T) {
	pool := NewPool(2)
	err := pool.Run(context.Background(), 0, func(_ context.Context, i int) error {
		t.Fatal("should not be called")
		return nil
	})
	assert.NoError(t, err)
}

func TestPool_Run_StopsOnFirstError(t *testing.T) {
	pool := NewPool(2)
	boom := errors.New("boom")

	var mu sync.Mutex
	ran := 0
	err := pool.Run(context.Background(), 1000, func(_ context.Context, i int) error {
		mu.Lock()
		ran++
		mu.Unlock()
		if i == 3 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Less(t, ran, 1000)
}

func TestPool_Run_CancelledContext(t *testing.T) {
	pool := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pool.Run(ctx, 10, func(_ context.Context, i int) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPool_MinimumOneWorker(t *testing.T) {
	assert.Equal(t, 1, NewPool(0).Workers())
	assert.Equal(t, 1, NewPool(-3).Workers())
	assert.Equal(t, 8, NewPool(8).Workers())
}
