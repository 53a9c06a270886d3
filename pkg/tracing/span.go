// Package tracing times the dictionary's request paths. A Span measures one
// operation; child spans (cache fill, index lookup) nest under the root and
// the whole tree is emitted through slog when the root is logged. Tracing
// is in-process only: the trace id is the request id and nothing propagates
// over the wire.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type ctxKey struct{}

// Span is one timed operation within a request.
type Span struct {
	name    string
	traceID string
	started time.Time
	elapsed time.Duration

	mu       sync.Mutex
	children []*Span
	attrs    []any
}

// StartSpan opens a root span named name and stores it in the returned
// context so child spans can attach to it.
func StartSpan(ctx context.Context, name string, traceID string) (context.Context, *Span) {
	s := &Span{
		name:    name,
		traceID: traceID,
		started: time.Now(),
	}
	return context.WithValue(ctx, ctxKey{}, s), s
}

// StartChildSpan opens a span nested under the one in ctx. Without a parent
// it behaves like a root span with no trace id.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	child := &Span{
		name:    name,
		started: time.Now(),
	}
	if parent := FromContext(ctx); parent != nil {
		child.traceID = parent.traceID
		parent.mu.Lock()
		parent.children = append(parent.children, child)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, ctxKey{}, child), child
}

// FromContext returns the innermost span in ctx, or nil.
func FromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(ctxKey{}).(*Span)
	return s
}

// SetAttr attaches a key/value pair that is emitted with the span.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, key, value)
	s.mu.Unlock()
}

// End fixes the span's duration. Call it before Log.
func (s *Span) End() {
	s.elapsed = time.Since(s.started)
}

// Log emits the span and its children, one slog line per span, with depth
// marking the nesting level.
func (s *Span) Log() {
	s.emit(0)
}

func (s *Span) emit(depth int) {
	fields := []any{
		"trace_id", s.traceID,
		"span", s.name,
		"duration_ms", s.elapsed.Milliseconds(),
		"depth", depth,
	}
	s.mu.Lock()
	fields = append(fields, s.attrs...)
	children := s.children
	s.mu.Unlock()

	slog.Info("span", fields...)
	for _, child := range children {
		child.emit(depth + 1)
	}
}
