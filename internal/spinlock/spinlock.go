// Package spinlock provides the busy-waiting mutual exclusion primitive that
// guards allocator state.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// attemptsBeforeYielding bounds how long Acquire spins before handing the
// processor back to the scheduler.
const attemptsBeforeYielding = 64

// yieldFn is invoked after attemptsBeforeYielding failed acquisition attempts.
var yieldFn = runtime.Gosched

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available. There is no fairness guarantee between
// waiters. The zero value is an unlocked Spinlock.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for attempts := 0; !atomic.CompareAndSwapUint32(&l.state, 0, 1); attempts++ {
		if attempts == attemptsBeforeYielding {
			yieldFn()
			attempts = 0
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}

// Lock and Unlock let a Spinlock satisfy sync.Locker.
func (l *Spinlock) Lock()   { l.Acquire() }
func (l *Spinlock) Unlock() { l.Release() }
