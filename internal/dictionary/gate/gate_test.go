package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/AniruddhAgrahari/open-read/pkg/errors"
)

// TestReadersShareTheGate verifies that multiple readers hold the gate at
// the same time.
func TestReadersShareTheGate(t *testing.T) {
	g := New(8, time.Second)

	var releases []func()
	for i := 0; i < 8; i++ {
		release, err := g.RAcquire(context.Background())
		if err != nil {
			t.Fatalf("reader %d blocked: %v", i, err)
		}
		releases = append(releases, release)
	}
	for _, release := range releases {
		release()
	}
}

// TestWriterExcludesReaders verifies that no reader is admitted while the
// write slot is held.
func TestWriterExcludesReaders(t *testing.T) {
	g := New(4, 50*time.Millisecond)

	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("writer acquire: %v", err)
	}

	if _, err := g.RAcquire(context.Background()); !errors.Is(err, apperrors.ErrLockTimeout) {
		t.Errorf("reader under held write slot: err = %v, want ErrLockTimeout", err)
	}

	release()
	rrelease, err := g.RAcquire(context.Background())
	if err != nil {
		t.Fatalf("reader after writer release: %v", err)
	}
	rrelease()
}

// TestWriterWaitsForReaders verifies that a writer drains in-flight readers
// before its exclusive window opens.
func TestWriterWaitsForReaders(t *testing.T) {
	g := New(4, time.Second)

	rrelease, err := g.RAcquire(context.Background())
	if err != nil {
		t.Fatalf("reader acquire: %v", err)
	}

	var writerIn atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		wrelease, err := g.Acquire(context.Background())
		if err != nil {
			t.Errorf("writer acquire: %v", err)
			return
		}
		writerIn.Store(true)
		wrelease()
	}()

	time.Sleep(20 * time.Millisecond)
	if writerIn.Load() {
		t.Error("writer entered while a reader held the gate")
	}

	rrelease()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writer never entered after the last reader released")
	}
}

// TestWriterTimeout verifies the bounded wait: a writer behind a stuck
// reader fails with ErrLockTimeout, and a later attempt succeeds once the
// reader releases.
func TestWriterTimeout(t *testing.T) {
	g := New(2, 50*time.Millisecond)

	rrelease, err := g.RAcquire(context.Background())
	if err != nil {
		t.Fatalf("reader acquire: %v", err)
	}

	start := time.Now()
	_, err = g.Acquire(context.Background())
	if !errors.Is(err, apperrors.ErrLockTimeout) {
		t.Fatalf("writer behind reader: err = %v, want ErrLockTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("writer failed after %v, before the timeout elapsed", elapsed)
	}

	rrelease()
	wrelease, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("writer after reader release: %v", err)
	}
	wrelease()
}

// TestCancelledContextSurfacesCtxErr verifies that caller cancellation is
// reported as the context error, not as a lock timeout.
func TestCancelledContextSurfacesCtxErr(t *testing.T) {
	g := New(2, time.Second)

	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("writer acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = g.RAcquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled reader: err = %v, want context.Canceled", err)
	}
	if errors.Is(err, apperrors.ErrLockTimeout) {
		t.Error("cancellation misreported as lock timeout")
	}
}

// TestAbandonedAcquireLeavesGateUsable verifies that a timed-out or
// cancelled acquisition does not leak weight: subsequent acquisitions still
// succeed at full capacity.
func TestAbandonedAcquireLeavesGateUsable(t *testing.T) {
	g := New(4, 30*time.Millisecond)

	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("writer acquire: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := g.RAcquire(context.Background()); err == nil {
			t.Fatal("reader admitted during exclusive window")
		}
	}
	release()

	// Full capacity must still be available after the failed attempts.
	var releases []func()
	for i := 0; i < 4; i++ {
		r, err := g.RAcquire(context.Background())
		if err != nil {
			t.Fatalf("reader %d after abandoned acquires: %v", i, err)
		}
		releases = append(releases, r)
	}
	for _, r := range releases {
		r()
	}
}

// TestConcurrentReadersAndWriter exercises the gate under mixed load and
// checks that the writer's window is genuinely exclusive.
func TestConcurrentReadersAndWriter(t *testing.T) {
	g := New(16, time.Second)

	var active atomic.Int64
	var maxDuringWrite atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				release, err := g.RAcquire(context.Background())
				if err != nil {
					t.Errorf("reader acquire: %v", err)
					return
				}
				active.Add(1)
				active.Add(-1)
				release()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			release, err := g.Acquire(context.Background())
			if err != nil {
				t.Errorf("writer acquire: %v", err)
				return
			}
			if n := active.Load(); n > maxDuringWrite.Load() {
				maxDuringWrite.Store(n)
			}
			release()
		}
	}()

	wg.Wait()
	if n := maxDuringWrite.Load(); n != 0 {
		t.Errorf("%d readers observed inside an exclusive window", n)
	}
}

// TestDefaults verifies that non-positive configuration falls back to the
// built-in defaults.
func TestDefaults(t *testing.T) {
	g := New(0, 0)
	if g.Timeout() != defaultTimeout {
		t.Errorf("Timeout() = %v, want %v", g.Timeout(), defaultTimeout)
	}
	release, err := g.RAcquire(context.Background())
	if err != nil {
		t.Fatalf("reader on default gate: %v", err)
	}
	release()
}
