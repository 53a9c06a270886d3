// Package server exposes the dictionary engine over HTTP: definition lookup,
// corpus build and reload, single-entry insert and remove, and cache
// statistics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/builder"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/term"
	"github.com/AniruddhAgrahari/open-read/internal/events"
	"github.com/AniruddhAgrahari/open-read/internal/loader"
	apperrors "github.com/AniruddhAgrahari/open-read/pkg/errors"
	"github.com/AniruddhAgrahari/open-read/pkg/logger"
	"github.com/AniruddhAgrahari/open-read/pkg/metrics"
	"github.com/AniruddhAgrahari/open-read/pkg/tracing"
)

// DefinitionCache is the part of the definition cache the handler needs:
// read-through lookup, invalidation after corpus changes, and hit counters
// for the stats endpoint.
type DefinitionCache interface {
	GetOrCompute(ctx context.Context, term string, computeFn func() ([]string, error)) ([]string, bool, error)
	Invalidate(ctx context.Context) error
	Stats() (hits, misses int64)
}

// Handler serves the dictionary HTTP API. Cache, collector, and metrics may
// be nil; the corresponding features are then disabled.
type Handler struct {
	engine    *dictionary.Engine
	cache     DefinitionCache
	collector *events.Collector
	source    loader.Loader
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(engine *dictionary.Engine, defCache DefinitionCache, collector *events.Collector, source loader.Loader, m *metrics.Metrics) *Handler {
	return &Handler{
		engine:    engine,
		cache:     defCache,
		collector: collector,
		source:    source,
		metrics:   m,
		logger:    logger.WithComponent("http-handler"),
	}
}

// SearchResponse is the JSON body returned for definition lookups.
type SearchResponse struct {
	Word        string   `json:"word"`
	Count       int      `json:"count"`
	Definitions []string `json:"definitions"`
}

// BuildRequest is the JSON body accepted by the corpus build endpoint.
type BuildRequest struct {
	Entries []builder.EntryInput `json:"entries"`
}

// InsertRequest is the JSON body accepted by the single-entry insert
// endpoint.
type InsertRequest struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	word := r.URL.Query().Get("word")
	if word == "" {
		h.observeLookup("rejected")
		h.writeError(w, http.StatusBadRequest, "query parameter 'word' is required")
		return
	}

	spanCtx, span := tracing.StartSpan(ctx, "search", logger.RequestID(ctx))
	span.SetAttr("word", word)
	defer func() {
		span.End()
		span.Log()
	}()

	normalized := term.Normalize(word)
	var definitions []string
	var err error
	cacheHit := false

	if h.cache != nil && normalized != "" {
		definitions, cacheHit, err = h.cache.GetOrCompute(spanCtx, normalized, func() ([]string, error) {
			fillCtx, fill := tracing.StartChildSpan(spanCtx, "cache-fill")
			defer fill.End()
			return h.engine.Search(fillCtx, word)
		})
	} else {
		definitions, err = h.engine.Search(spanCtx, word)
	}

	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if errors.Is(err, apperrors.ErrQueryRejected) {
			h.observeLookup("rejected")
			h.writeError(w, status, "query must not be empty")
			return
		}
		h.observeLookup("error")
		log.Error("search failed", "word", word, "error", err)
		h.writeError(w, status, "search failed")
		return
	}

	latency := time.Since(start)
	outcome := "hit"
	if len(definitions) == 0 {
		outcome = "zero_result"
	}
	h.observeLookup(outcome)
	if h.metrics != nil {
		cacheStatus := "disabled"
		if h.cache != nil {
			if cacheHit {
				cacheStatus = "hit"
				h.metrics.CacheHitsTotal.Inc()
			} else {
				cacheStatus = "miss"
				h.metrics.CacheMissesTotal.Inc()
			}
		}
		h.metrics.LookupLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.LookupResultsCount.Observe(float64(len(definitions)))
	}

	log.Info("search completed",
		"word", word,
		"results", len(definitions),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		h.collector.Track(events.QueryEvent{
			Type:        "query",
			Term:        normalized,
			ResultCount: len(definitions),
			CacheHit:    cacheHit,
			DurationMs:  latency.Milliseconds(),
			Timestamp:   time.Now().UTC(),
		})
	}

	h.writeJSON(w, http.StatusOK, SearchResponse{
		Word:        word,
		Count:       len(definitions),
		Definitions: definitions,
	})
}

func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	report, err := h.engine.Build(ctx, req.Entries)
	if err != nil {
		h.observeBuild("failure", nil)
		log.Error("build failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "build failed")
		return
	}
	h.observeBuild("success", report)
	h.trackBuild("api", report)
	h.afterMutation(ctx)

	log.Info("corpus built",
		"indexed", report.Indexed,
		"skipped", len(report.Skipped),
	)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	entries, err := h.source.Load(ctx)
	if err != nil {
		log.Error("dataset load failed", "source", h.source.Name(), "error", err)
		h.writeError(w, http.StatusBadGateway, fmt.Sprintf("loading dataset from %s failed", h.source.Name()))
		return
	}
	report, err := h.engine.Build(ctx, entries)
	if err != nil {
		h.observeBuild("failure", nil)
		log.Error("reload failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "reload failed")
		return
	}
	h.observeBuild("success", report)
	h.trackBuild(h.source.Name(), report)
	h.afterMutation(ctx)

	log.Info("corpus reloaded",
		"source", h.source.Name(),
		"indexed", report.Indexed,
		"skipped", len(report.Skipped),
	)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := h.engine.Insert(ctx, req.Term, req.Definition)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, "term must not be empty")
			return
		}
		log.Error("insert failed", "term", req.Term, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "insert failed")
		return
	}
	h.afterMutation(ctx)

	h.writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	if err := h.engine.Remove(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrEntryNotFound) {
			h.writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		log.Error("remove failed", "id", id, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "remove failed")
		return
	}
	h.afterMutation(ctx)

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.engine.Entries(ctx)
	if err != nil {
		h.logger.Error("listing entries failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "listing entries failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// afterMutation invalidates the definition cache and refreshes the size
// gauges. Runs after every successful corpus change.
func (h *Handler) afterMutation(ctx context.Context) {
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.logger.Error("cache invalidation failed", "error", err)
		}
	}
	if h.metrics != nil {
		if stats, err := h.engine.Stats(ctx); err == nil {
			h.metrics.EntriesIndexed.Set(float64(stats.Entries))
			h.metrics.TermsIndexed.Set(float64(stats.Terms))
		}
	}
}

// trackBuild publishes a build event for downstream analytics.
func (h *Handler) trackBuild(source string, report *builder.BuildReport) {
	if h.collector == nil {
		return
	}
	h.collector.Track(events.BuildEvent{
		Type:      "build",
		Source:    source,
		Indexed:   report.Indexed,
		Skipped:   len(report.Skipped),
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) observeLookup(outcome string) {
	if h.metrics != nil {
		h.metrics.LookupsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) observeBuild(status string, report *builder.BuildReport) {
	if h.metrics == nil {
		return
	}
	h.metrics.BuildsTotal.WithLabelValues(status).Inc()
	if report != nil {
		h.metrics.BuildSkippedTotal.Add(float64(len(report.Skipped)))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
