package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/AniruddhAgrahari/open-read/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID reads the X-Request-ID header (generating one when absent),
// stores it in the request context for loggers, and echoes it back in the
// response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = newRequestID()
		}
		ctx := logger.WithRequestID(r.Context(), requestID)
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
