// Package store owns the authoritative set of dictionary entries. IDs are
// monotonic and assigned on insert; entries are immutable once stored.
//
// The store is not safe for concurrent use on its own. All access runs
// through the engine's concurrency gate.
package store

import (
	apperrors "github.com/AniruddhAgrahari/open-read/pkg/errors"
)

// Entry is a stored (term, definition) record. Term is the normalized lookup
// key.
type Entry struct {
	ID         uint64 `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Store holds entries in insertion order with O(1) id lookup.
type Store struct {
	entries []Entry
	byID    map[uint64]int
	nextID  uint64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		byID:   make(map[uint64]int),
		nextID: 1,
	}
}

// Insert appends a new entry and returns its freshly allocated id. The term
// must already be normalized and non-empty.
func (s *Store) Insert(term, definition string) (uint64, error) {
	if term == "" {
		return 0, apperrors.New(apperrors.ErrInvalidInput, 400, "term must not be empty")
	}
	id := s.nextID
	s.nextID++
	s.byID[id] = len(s.entries)
	s.entries = append(s.entries, Entry{
		ID:         id,
		Term:       term,
		Definition: definition,
	})
	return id, nil
}

// Get returns the entry for id, if it exists and has not been deleted.
func (s *Store) Get(id uint64) (Entry, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[pos], true
}

// Delete removes the entry for id. The caller is responsible for purging the
// inverted index in the same exclusive window.
func (s *Store) Delete(id uint64) (Entry, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	entry := s.entries[pos]
	delete(s.byID, id)
	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	for i := pos; i < len(s.entries); i++ {
		s.byID[s.entries[i].ID] = i
	}
	return entry, true
}

// Scan visits live entries in insertion order until fn returns false. It is
// restartable and only used for bulk re-indexing.
func (s *Store) Scan(fn func(Entry) bool) {
	for _, entry := range s.entries {
		if !fn(entry) {
			return
		}
	}
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return len(s.entries)
}
