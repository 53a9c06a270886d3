// Package index implements the inverted index mapping normalized terms to
// the ids of entries carrying them. Posting order is insertion order, which
// fixes result ordering for homonyms.
//
// Lookups are exact-match only: no prefix, substring, or fuzzy matching, and
// no alternate suggestions. Like the store, the index relies on the engine's
// concurrency gate for thread safety.
package index

import "slices"

// Index maps a normalized term to the ordered ids of entries containing it.
type Index struct {
	postings map[string][]uint64
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		postings: make(map[string][]uint64),
	}
}

// Add inserts id into the posting list for term, creating the list if
// absent. Re-adding an id already present is a no-op.
func (ix *Index) Add(term string, id uint64) {
	ids := ix.postings[term]
	if slices.Contains(ids, id) {
		return
	}
	ix.postings[term] = append(ids, id)
}

// Remove deletes id from the posting list for term, pruning the term key
// when its list empties.
func (ix *Index) Remove(term string, id uint64) {
	ids, ok := ix.postings[term]
	if !ok {
		return
	}
	pos := slices.Index(ids, id)
	if pos < 0 {
		return
	}
	ids = append(ids[:pos], ids[pos+1:]...)
	if len(ids) == 0 {
		delete(ix.postings, term)
		return
	}
	ix.postings[term] = ids
}

// Lookup returns a copy of the posting list for term, in insertion order.
// An absent term yields nil.
func (ix *Index) Lookup(term string) []uint64 {
	ids, ok := ix.postings[term]
	if !ok {
		return nil
	}
	return slices.Clone(ids)
}

// TermCount returns the number of distinct terms currently indexed.
func (ix *Index) TermCount() int {
	return len(ix.postings)
}
