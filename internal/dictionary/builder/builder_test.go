package builder

import (
	"slices"
	"testing"
)

// TestBuildIndexesAllValidEntries verifies a clean batch produces a fully
// populated snapshot and an empty skip list.
func TestBuildIndexesAllValidEntries(t *testing.T) {
	entries := []EntryInput{
		{Term: "Compiler", Definition: "translates programs ahead of execution"},
		{Term: "Interpreter", Definition: "executes programs directly"},
		{Term: "Bytecode", Definition: "portable intermediate instruction format"},
	}

	snap, report := Build(entries)
	if report.Indexed != 3 {
		t.Errorf("report.Indexed = %d, want 3", report.Indexed)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("report.Skipped = %v, want empty", report.Skipped)
	}
	if snap.Store.Len() != 3 {
		t.Errorf("store holds %d entries, want 3", snap.Store.Len())
	}
	if snap.Index.TermCount() != 3 {
		t.Errorf("index holds %d terms, want 3", snap.Index.TermCount())
	}

	// Terms are keyed by their normalized form.
	if ids := snap.Index.Lookup("compiler"); len(ids) != 1 {
		t.Errorf("Lookup(compiler) = %v, want one id", ids)
	}
	if ids := snap.Index.Lookup("Compiler"); len(ids) != 0 {
		t.Errorf("Lookup(Compiler) matched the unnormalized key: %v", ids)
	}
}

// TestBuildSkipsBlankTerms verifies skip-and-record: invalid entries are
// reported with position and reason while the rest of the batch indexes.
func TestBuildSkipsBlankTerms(t *testing.T) {
	entries := []EntryInput{
		{Term: "Bank", Definition: "a financial institution"},
		{Term: "   ", Definition: "orphaned definition"},
		{Term: "Bank", Definition: "the land alongside a river"},
		{Term: "", Definition: "another orphan"},
	}

	snap, report := Build(entries)
	if report.Indexed != 2 {
		t.Errorf("report.Indexed = %d, want 2", report.Indexed)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("len(report.Skipped) = %d, want 2", len(report.Skipped))
	}

	if report.Skipped[0].Position != 1 || report.Skipped[1].Position != 3 {
		t.Errorf("skipped positions = [%d %d], want [1 3]",
			report.Skipped[0].Position, report.Skipped[1].Position)
	}
	for _, sk := range report.Skipped {
		if sk.Reason == "" {
			t.Errorf("skipped entry at position %d has no reason", sk.Position)
		}
	}

	// Both surviving homonyms share one posting list, in batch order.
	ids := snap.Index.Lookup("bank")
	if len(ids) != 2 {
		t.Fatalf("Lookup(bank) = %v, want two ids", ids)
	}
	first, _ := snap.Store.Get(ids[0])
	second, _ := snap.Store.Get(ids[1])
	if first.Definition != "a financial institution" || second.Definition != "the land alongside a river" {
		t.Errorf("homonym order wrong: got [%q %q]", first.Definition, second.Definition)
	}
}

// TestBuildEmptyBatch verifies that an empty batch yields a usable empty
// snapshot.
func TestBuildEmptyBatch(t *testing.T) {
	snap, report := Build(nil)
	if report.Indexed != 0 || len(report.Skipped) != 0 {
		t.Errorf("empty batch report = %+v, want zero values", report)
	}
	if snap.Store.Len() != 0 || snap.Index.TermCount() != 0 {
		t.Errorf("empty batch produced a non-empty snapshot")
	}
}

// TestBuildMultiWordTerms verifies that phrases index as single keys with
// collapsed whitespace.
func TestBuildMultiWordTerms(t *testing.T) {
	snap, _ := Build([]EntryInput{
		{Term: "Virtual  Machine", Definition: "software execution environment"},
		{Term: "Garbage Collection", Definition: "automatic memory reclamation"},
	})

	ids := snap.Index.Lookup("virtual machine")
	if !slices.Equal(ids, []uint64{1}) {
		t.Errorf("Lookup(virtual machine) = %v, want [1]", ids)
	}
	if ids := snap.Index.Lookup("machine"); len(ids) != 0 {
		t.Errorf("phrase was tokenized: Lookup(machine) = %v", ids)
	}
}
