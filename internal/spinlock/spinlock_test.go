package spinlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinlock(t *testing.T) {
	var (
		sl         Spinlock
		wg         sync.WaitGroup
		numWorkers = 10
		acquired   atomic.Int32
	)

	sl.Acquire()

	require.False(t, sl.TryToAcquire(), "expected TryToAcquire to return false when lock is held")

	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			sl.Acquire()
			acquired.Add(1)
			sl.Release()
		}()
	}

	<-time.After(50 * time.Millisecond)
	assert.Zero(t, acquired.Load(), "no worker may enter while the lock is held")

	sl.Release()
	wg.Wait()
	assert.Equal(t, int32(numWorkers), acquired.Load())
	assert.True(t, sl.TryToAcquire(), "lock must be free after all workers released it")
}

func TestSpinlockYields(t *testing.T) {
	defer func(orig func()) { yieldFn = orig }(yieldFn)

	var (
		sl     Spinlock
		yields atomic.Int32
		done   = make(chan struct{})
	)
	sl.Acquire()
	yieldFn = func() {
		if yields.Add(1) == 3 {
			sl.Release()
		}
	}

	go func() {
		sl.Acquire()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never acquired the lock")
	}
	assert.GreaterOrEqual(t, yields.Load(), int32(3))
}

func TestSpinlockMutualExclusion(t *testing.T) {
	var (
		sl      Spinlock
		wg      sync.WaitGroup
		counter int
	)

	const workers, iterations = 8, 1000
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range iterations {
				sl.Lock()
				counter++
				sl.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
}
