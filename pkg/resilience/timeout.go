package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout bounds fn to limit. Corpus refreshes run under it so a
// stalled dataset source cannot wedge the refresh consumer. fn receives the
// derived context and should honour its cancellation; the wrapper returns
// as soon as the deadline passes either way, leaving fn to unwind on its
// own.
func WithTimeout(ctx context.Context, limit time.Duration, name string, fn func(ctx context.Context) error) error {
	if limit <= 0 {
		return fn(ctx)
	}
	bounded, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- fn(bounded) }()

	select {
	case err := <-errCh:
		return err
	case <-bounded.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s exceeded %v: %w", name, limit, context.DeadlineExceeded)
	}
}
