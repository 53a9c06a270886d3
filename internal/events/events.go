// Package events publishes dictionary activity to Kafka: one event per
// lookup and one per corpus build. Downstream consumers use them for usage
// analytics; the service never blocks on them.
package events

import "time"

// QueryEvent records a single dictionary lookup.
type QueryEvent struct {
	Type        string    `json:"type"` // always "query"
	Term        string    `json:"term"`
	ResultCount int       `json:"result_count"`
	CacheHit    bool      `json:"cache_hit"`
	DurationMs  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// BuildEvent records a corpus build or refresh.
type BuildEvent struct {
	Type      string    `json:"type"` // always "build"
	Source    string    `json:"source"`
	Indexed   int       `json:"indexed"`
	Skipped   int       `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}
