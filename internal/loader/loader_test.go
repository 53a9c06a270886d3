package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary/builder"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary/term"
	"github.com/AniruddhAgrahari/open-read/pkg/config"
)

// TestBuiltinDataset verifies the embedded dataset loads, is non-trivial,
// and survives the index builder without skips.
func TestBuiltinDataset(t *testing.T) {
	entries, err := Builtin{}.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("builtin dataset is empty")
	}

	_, report := builder.Build(entries)
	if len(report.Skipped) != 0 {
		t.Errorf("builtin dataset has unindexable entries: %v", report.Skipped)
	}
	if report.Indexed != len(entries) {
		t.Errorf("indexed %d of %d builtin entries", report.Indexed, len(entries))
	}

	// Homonyms are deliberate: "bank" carries at least two definitions.
	snap, _ := builder.Build(entries)
	if ids := snap.Index.Lookup(term.Normalize("Bank")); len(ids) < 2 {
		t.Errorf("builtin dataset should hold multiple bank entries, got %d", len(ids))
	}
}

// TestBuiltinLoadReturnsCopy verifies that callers cannot mutate the
// embedded dataset through the returned slice.
func TestBuiltinLoadReturnsCopy(t *testing.T) {
	first, _ := Builtin{}.Load(context.Background())
	first[0].Term = "mutated"

	second, _ := Builtin{}.Load(context.Background())
	if second[0].Term == "mutated" {
		t.Error("mutation of a loaded batch leaked into the embedded dataset")
	}
}

// TestFileLoader verifies YAML dataset parsing and the missing-file error.
func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	content := `entries:
  - term: Compiler
    definition: A program that translates source code ahead of execution.
  - term: Interpreter
    definition: A program that executes source code directly.
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}

	f := &File{Path: path}
	entries, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Term != "Compiler" || entries[1].Term != "Interpreter" {
		t.Errorf("entries parsed out of order: %+v", entries)
	}

	missing := &File{Path: filepath.Join(t.TempDir(), "absent.yaml")}
	if _, err := missing.Load(context.Background()); err == nil {
		t.Error("load of a missing file succeeded")
	}
}

// TestNewSelectsSource verifies loader selection and its configuration
// errors.
func TestNewSelectsSource(t *testing.T) {
	cases := []struct {
		name     string
		cfg      config.DictionaryConfig
		wantName string
		wantErr  bool
	}{
		{"default source", config.DictionaryConfig{}, "builtin", false},
		{"explicit builtin", config.DictionaryConfig{Source: "builtin"}, "builtin", false},
		{"file with path", config.DictionaryConfig{Source: "file", DatasetPath: "x.yaml"}, "file", false},
		{"file without path", config.DictionaryConfig{Source: "file"}, "", true},
		{"postgres without client", config.DictionaryConfig{Source: "postgres"}, "", true},
		{"unknown source", config.DictionaryConfig{Source: "sqlite"}, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.cfg, config.PostgresConfig{}, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("New(%+v) succeeded, want error", tc.cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%+v): %v", tc.cfg, err)
			}
			if l.Name() != tc.wantName {
				t.Errorf("loader name = %q, want %q", l.Name(), tc.wantName)
			}
		})
	}
}
