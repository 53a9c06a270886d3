// Package builder populates a store and inverted index from a batch of raw
// (term, definition) pairs. It builds into a fresh shadow pair that the
// engine swaps in under its write slot, so readers never observe a partially
// built index.
package builder

import (
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/index"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/store"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/term"
	"github.com/AniruddhAgrahari/open-read/pkg/logger"
)

// EntryInput is a raw (term, definition) pair supplied by a dataset loader
// or the HTTP API.
type EntryInput struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// SkippedEntry records one entry rejected during a build, with its batch
// position and reason.
type SkippedEntry struct {
	Position int    `json:"position"`
	Term     string `json:"term"`
	Reason   string `json:"reason"`
}

// BuildReport summarises a batch build: how many entries were indexed and
// which were skipped. Per-entry failures never abort the remaining batch.
type BuildReport struct {
	Indexed int            `json:"indexed"`
	Skipped []SkippedEntry `json:"skipped"`
}

// Snapshot is a mutually consistent store/index pair produced by Build.
type Snapshot struct {
	Store *store.Store
	Index *index.Index
}

// Build normalizes and inserts every entry of the batch into a fresh
// Snapshot. Entries whose term is empty after normalization are skipped and
// recorded in the report; all remaining entries are still indexed.
func Build(entries []EntryInput) (*Snapshot, *BuildReport) {
	snap := &Snapshot{
		Store: store.New(),
		Index: index.New(),
	}
	report := &BuildReport{}
	log := logger.WithComponent("index-builder")

	for i, in := range entries {
		normalized := term.Normalize(in.Term)
		if normalized == "" {
			report.Skipped = append(report.Skipped, SkippedEntry{
				Position: i,
				Term:     in.Term,
				Reason:   "term is empty after normalization",
			})
			continue
		}
		id, err := snap.Store.Insert(normalized, in.Definition)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{
				Position: i,
				Term:     in.Term,
				Reason:   err.Error(),
			})
			continue
		}
		snap.Index.Add(normalized, id)
		report.Indexed++
	}

	if len(report.Skipped) > 0 {
		log.Warn("build skipped entries",
			"indexed", report.Indexed,
			"skipped", len(report.Skipped),
		)
	}
	return snap, report
}
