package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Timeout bounds request handling and answers 504 when the handler misses
// the deadline without having written anything. Lookups are in-memory reads
// and finish fast; what this mostly catches is a mutation queued behind the
// dictionary's write slot. Once the timeout claims the response, late
// handler writes are discarded instead of racing it.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			gw := &guardedWriter{ResponseWriter: w}
			finished := make(chan struct{})
			go func() {
				defer close(finished)
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-finished:
			case <-ctx.Done():
				if !gw.claimForTimeout() {
					return
				}
				slog.Warn("request deadline exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"limit", limit,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				w.Write([]byte(`{"error":"request timed out"}` + "\n"))
			}
		})
	}
}

// guardedWriter serialises the handler goroutine and the timeout path:
// whichever touches the response first owns it.
type guardedWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	wrote    bool
	timedOut bool
}

// claimForTimeout reports whether the timeout path may write the 504. It
// fails when the handler already started the response.
func (g *guardedWriter) claimForTimeout() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wrote {
		return false
	}
	g.timedOut = true
	return true
}

func (g *guardedWriter) WriteHeader(code int) {
	g.mu.Lock()
	if g.timedOut {
		g.mu.Unlock()
		return
	}
	g.wrote = true
	g.mu.Unlock()
	g.ResponseWriter.WriteHeader(code)
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	g.mu.Lock()
	if g.timedOut {
		g.mu.Unlock()
		return len(b), nil
	}
	g.wrote = true
	g.mu.Unlock()
	return g.ResponseWriter.Write(b)
}
