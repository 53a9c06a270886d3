package index

import (
	"slices"
	"testing"
)

// TestAddAndLookup verifies basic posting list construction and that lookup
// order matches add order.
func TestAddAndLookup(t *testing.T) {
	ix := New()
	ix.Add("bank", 1)
	ix.Add("bank", 2)
	ix.Add("compiler", 3)

	got := ix.Lookup("bank")
	if !slices.Equal(got, []uint64{1, 2}) {
		t.Errorf("Lookup(bank) = %v, want [1 2]", got)
	}
	if got := ix.Lookup("compiler"); !slices.Equal(got, []uint64{3}) {
		t.Errorf("Lookup(compiler) = %v, want [3]", got)
	}
	if ix.TermCount() != 2 {
		t.Errorf("TermCount() = %d, want 2", ix.TermCount())
	}
}

// TestLookupMissingTerm verifies that an unknown term yields an empty result
// rather than an error condition.
func TestLookupMissingTerm(t *testing.T) {
	ix := New()
	if got := ix.Lookup("notaword"); len(got) != 0 {
		t.Errorf("Lookup on empty index = %v, want empty", got)
	}
}

// TestAddIdempotent verifies that re-adding an existing (term, id) pair does
// not duplicate the posting.
func TestAddIdempotent(t *testing.T) {
	ix := New()
	ix.Add("type", 7)
	ix.Add("type", 7)
	ix.Add("type", 7)

	if got := ix.Lookup("type"); !slices.Equal(got, []uint64{7}) {
		t.Errorf("Lookup(type) = %v, want [7]", got)
	}
}

// TestRemove verifies posting removal, order preservation of surviving ids,
// and pruning of emptied terms.
func TestRemove(t *testing.T) {
	ix := New()
	ix.Add("bank", 1)
	ix.Add("bank", 2)
	ix.Add("bank", 3)

	ix.Remove("bank", 2)
	if got := ix.Lookup("bank"); !slices.Equal(got, []uint64{1, 3}) {
		t.Errorf("Lookup(bank) after remove = %v, want [1 3]", got)
	}

	// Removing an absent id or term is a no-op.
	ix.Remove("bank", 99)
	ix.Remove("ghost", 1)
	if got := ix.Lookup("bank"); !slices.Equal(got, []uint64{1, 3}) {
		t.Errorf("no-op removes changed postings: %v", got)
	}

	ix.Remove("bank", 1)
	ix.Remove("bank", 3)
	if got := ix.Lookup("bank"); len(got) != 0 {
		t.Errorf("Lookup(bank) after full removal = %v, want empty", got)
	}
	if ix.TermCount() != 0 {
		t.Errorf("emptied term not pruned: TermCount() = %d", ix.TermCount())
	}
}

// TestLookupReturnsCopy verifies that callers cannot corrupt the posting
// list through the returned slice.
func TestLookupReturnsCopy(t *testing.T) {
	ix := New()
	ix.Add("pointer", 1)
	ix.Add("pointer", 2)

	got := ix.Lookup("pointer")
	got[0] = 42

	if fresh := ix.Lookup("pointer"); !slices.Equal(fresh, []uint64{1, 2}) {
		t.Errorf("mutating a lookup result leaked into the index: %v", fresh)
	}
}
