// Package dictionary ties the entry store, inverted index, and concurrency
// gate together behind the engine used by the HTTP layer and the refresh
// consumer.
package dictionary

import (
	"context"
	"log/slog"
	"time"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary/builder"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/gate"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/index"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/store"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/term"
	"github.com/AniruddhAgrahari/open-read/pkg/config"
	apperrors "github.com/AniruddhAgrahari/open-read/pkg/errors"
	"github.com/AniruddhAgrahari/open-read/pkg/logger"
)

// Engine owns the live store/index snapshot. All mutation goes through the
// gate's exclusive slot; lookups share the gate with each other.
type Engine struct {
	gate   *gate.Gate
	snap   *builder.Snapshot
	logger *slog.Logger
}

// Stats reports the size of the live snapshot.
type Stats struct {
	Entries int `json:"entries"`
	Terms   int `json:"terms"`
}

// NewEngine creates an Engine with an empty snapshot.
func NewEngine(cfg config.DictionaryConfig) *Engine {
	return &Engine{
		gate: gate.New(cfg.MaxConcurrentReads, cfg.LockTimeout),
		snap: &builder.Snapshot{
			Store: store.New(),
			Index: index.New(),
		},
		logger: logger.WithComponent("dictionary-engine"),
	}
}

// InstrumentGate installs acquisition observers on the concurrency gate.
// Must be called before the engine is shared between goroutines.
func (e *Engine) InstrumentGate(onWait func(mode string, wait time.Duration), onTimeout func(mode string)) {
	e.gate.OnWait = onWait
	e.gate.OnTimeout = onTimeout
}

// Search returns the definitions for raw, in entry insertion order. A blank
// query fails with ErrQueryRejected; a query with no match succeeds with an
// empty slice.
func (e *Engine) Search(ctx context.Context, raw string) ([]string, error) {
	normalized := term.Normalize(raw)
	if normalized == "" {
		return nil, apperrors.New(apperrors.ErrQueryRejected, 400, "query must not be empty")
	}

	release, err := e.gate.RAcquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ids := e.snap.Index.Lookup(normalized)
	definitions := make([]string, 0, len(ids))
	for _, id := range ids {
		entry, ok := e.snap.Store.Get(id)
		if !ok {
			// The index and store are swapped as a unit, so a dangling id
			// means a bug in the write path.
			e.logger.Error("index references missing entry", "id", id, "term", normalized)
			continue
		}
		definitions = append(definitions, entry.Definition)
	}
	e.logger.Debug("search executed",
		"term", normalized,
		"results", len(definitions),
	)
	return definitions, nil
}

// Build replaces the corpus with the given batch. The shadow snapshot is
// assembled outside the gate; the exclusive window covers only the swap, so
// readers observe either the old corpus or the new one, never a mixture.
// Once the swap begins it runs to completion.
func (e *Engine) Build(ctx context.Context, entries []builder.EntryInput) (*builder.BuildReport, error) {
	snap, report := builder.Build(entries)

	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	e.snap = snap
	release()

	e.logger.Info("corpus rebuilt",
		"indexed", report.Indexed,
		"skipped", len(report.Skipped),
	)
	return report, nil
}

// Insert adds a single entry to the live corpus and returns its id.
func (e *Engine) Insert(ctx context.Context, rawTerm, definition string) (uint64, error) {
	normalized := term.Normalize(rawTerm)
	if normalized == "" {
		return 0, apperrors.New(apperrors.ErrInvalidInput, 400, "term must not be empty")
	}

	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	id, err := e.snap.Store.Insert(normalized, definition)
	if err != nil {
		return 0, err
	}
	e.snap.Index.Add(normalized, id)
	e.logger.Info("entry inserted", "id", id, "term", normalized)
	return id, nil
}

// Remove deletes the entry for id and purges its term from the inverted
// index in the same exclusive window.
func (e *Engine) Remove(ctx context.Context, id uint64) error {
	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	entry, ok := e.snap.Store.Delete(id)
	if !ok {
		return apperrors.Newf(apperrors.ErrEntryNotFound, 404, "no entry with id %d", id)
	}
	e.snap.Index.Remove(entry.Term, id)
	e.logger.Info("entry removed", "id", id, "term", entry.Term)
	return nil
}

// Entries returns a snapshot of all live entries in insertion order.
func (e *Engine) Entries(ctx context.Context) ([]store.Entry, error) {
	release, err := e.gate.RAcquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	entries := make([]store.Entry, 0, e.snap.Store.Len())
	e.snap.Store.Scan(func(entry store.Entry) bool {
		entries = append(entries, entry)
		return true
	})
	return entries, nil
}

// Stats returns entry and term counts for health checks and metrics.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	release, err := e.gate.RAcquire(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer release()

	return Stats{
		Entries: e.snap.Store.Len(),
		Terms:   e.snap.Index.TermCount(),
	}, nil
}
