// Package gate serialises access to the dictionary's shared state. Readers
// hold the gate concurrently; a writer requires the whole gate to itself.
//
// The gate is a weighted semaphore: readers acquire weight 1, writers acquire
// the full capacity. The semaphore's FIFO wait queue serialises writers in
// arrival order, and a waiting writer fences later readers behind it, so a
// steady read load cannot starve writes.
package gate

import (
	"context"
	"time"

	apperrors "github.com/AniruddhAgrahari/open-read/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxReaders = 1024
	defaultTimeout    = 30 * time.Second
)

// Gate grants shared read access and exclusive write access with a bounded
// acquisition wait.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	timeout  time.Duration

	// OnWait and OnTimeout, when set, receive acquisition measurements.
	// Both must be set before the gate is shared between goroutines.
	OnWait    func(mode string, wait time.Duration)
	OnTimeout func(mode string)
}

// New creates a Gate admitting at most maxReaders concurrent readers.
// Acquisitions that are not granted within timeout fail with ErrLockTimeout;
// zero values select generous defaults, since rebuilds are rare and small.
func New(maxReaders int64, timeout time.Duration) *Gate {
	if maxReaders <= 0 {
		maxReaders = defaultMaxReaders
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gate{
		sem:      semaphore.NewWeighted(maxReaders),
		capacity: maxReaders,
		timeout:  timeout,
	}
}

// RAcquire obtains a shared read slot. The returned release function must be
// called exactly once.
func (g *Gate) RAcquire(ctx context.Context) (release func(), err error) {
	return g.acquire(ctx, 1, "read")
}

// Acquire obtains the exclusive write slot, waiting for in-flight readers to
// drain and for earlier writers to finish.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	return g.acquire(ctx, g.capacity, "write")
}

func (g *Gate) acquire(ctx context.Context, weight int64, mode string) (func(), error) {
	start := time.Now()
	acquireCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.sem.Acquire(acquireCtx, weight); err != nil {
		// Abandoning a request before the slot is granted has no side
		// effects; the semaphore returns the partially queued weight.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if g.OnTimeout != nil {
			g.OnTimeout(mode)
		}
		return nil, apperrors.Newf(apperrors.ErrLockTimeout, 503,
			"%s slot not granted within %v", mode, g.timeout)
	}
	if g.OnWait != nil {
		g.OnWait(mode, time.Since(start))
	}
	return func() { g.sem.Release(weight) }, nil
}

// Timeout returns the configured acquisition bound.
func (g *Gate) Timeout() time.Duration {
	return g.timeout
}
