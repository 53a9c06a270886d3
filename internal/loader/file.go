package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary/builder"
	"gopkg.in/yaml.v3"
)

// File loads a dataset from a YAML file of the form:
//
//	entries:
//	  - term: Compiler
//	    definition: A program that translates source code.
type File struct {
	Path string
}

type fileDataset struct {
	Entries []builder.EntryInput `yaml:"entries"`
}

func (f *File) Name() string { return "file" }

func (f *File) Load(ctx context.Context) ([]builder.EntryInput, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file %s: %w", f.Path, err)
	}
	var dataset fileDataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("parsing dataset file %s: %w", f.Path, err)
	}
	return dataset.Entries, nil
}
