package store

import (
	"errors"
	"testing"

	apperrors "github.com/AniruddhAgrahari/open-read/pkg/errors"
)

// TestInsertAssignsMonotonicIDs verifies that ids start at 1 and increase by
// one per insert.
func TestInsertAssignsMonotonicIDs(t *testing.T) {
	s := New()
	for i := 1; i <= 5; i++ {
		id, err := s.Insert("term", "definition")
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if id != uint64(i) {
			t.Errorf("insert %d: got id %d, want %d", i, id, i)
		}
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

// TestInsertRejectsEmptyTerm verifies the invalid-input error for a blank
// term.
func TestInsertRejectsEmptyTerm(t *testing.T) {
	s := New()
	_, err := s.Insert("", "definition")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Insert(\"\") error = %v, want ErrInvalidInput", err)
	}
	if s.Len() != 0 {
		t.Errorf("failed insert mutated the store: Len() = %d", s.Len())
	}
}

// TestGet verifies retrieval by id and the not-found case.
func TestGet(t *testing.T) {
	s := New()
	id, err := s.Insert("compiler", "translates source code ahead of execution")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	entry, ok := s.Get(id)
	if !ok {
		t.Fatalf("Get(%d) not found", id)
	}
	if entry.Term != "compiler" {
		t.Errorf("entry.Term = %q, want %q", entry.Term, "compiler")
	}

	if _, ok := s.Get(999); ok {
		t.Error("Get(999) found an entry in an almost-empty store")
	}
}

// TestDelete verifies removal, id stability of survivors, and that deleted
// ids are never reused.
func TestDelete(t *testing.T) {
	s := New()
	a, _ := s.Insert("alpha", "first")
	b, _ := s.Insert("beta", "second")
	c, _ := s.Insert("gamma", "third")

	entry, ok := s.Delete(b)
	if !ok {
		t.Fatalf("Delete(%d) reported not found", b)
	}
	if entry.Term != "beta" {
		t.Errorf("deleted entry.Term = %q, want %q", entry.Term, "beta")
	}
	if s.Len() != 2 {
		t.Errorf("Len() after delete = %d, want 2", s.Len())
	}

	if _, ok := s.Get(b); ok {
		t.Error("deleted entry still retrievable")
	}
	for _, id := range []uint64{a, c} {
		if _, ok := s.Get(id); !ok {
			t.Errorf("surviving entry %d no longer retrievable", id)
		}
	}

	if _, ok := s.Delete(b); ok {
		t.Error("double delete reported success")
	}

	// A later insert must not resurrect the deleted id.
	d, _ := s.Insert("delta", "fourth")
	if d == b {
		t.Errorf("insert reused deleted id %d", b)
	}
}

// TestScanInsertionOrder verifies that Scan visits entries oldest first and
// honours early termination.
func TestScanInsertionOrder(t *testing.T) {
	s := New()
	terms := []string{"bank", "trace-based", "specialization"}
	for _, term := range terms {
		if _, err := s.Insert(term, "def of "+term); err != nil {
			t.Fatalf("insert %q: %v", term, err)
		}
	}

	var seen []string
	s.Scan(func(e Entry) bool {
		seen = append(seen, e.Term)
		return true
	})
	for i, term := range terms {
		if seen[i] != term {
			t.Errorf("scan position %d: got %q, want %q", i, seen[i], term)
		}
	}

	count := 0
	s.Scan(func(Entry) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("scan with early stop visited %d entries, want 2", count)
	}
}
