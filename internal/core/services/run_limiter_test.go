package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLimiter_ConcurrencyLimit(t *testing.T) {
	limiter := NewRunLimiter(testLogger(), 2)

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := limiter.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			current := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if current <= old || atomic.CompareAndSwapInt32(&peak, old, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRunLimiter_GivesUpWithContext(t *testing.T) {
	limiter := NewRunLimiter(testLogger(), 1)
	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = limiter.Acquire(ctx)
	assert.ErrorIs(t, err, ErrAgentBusy)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunLimiter_DefaultLimit(t *testing.T) {
	assert.Equal(t, int64(4), NewRunLimiter(testLogger(), 0).Limit())
}
