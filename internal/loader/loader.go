// Package loader sources dictionary datasets. A Loader produces the raw
// (term, definition) batch fed to the index builder; the configured source
// may be the embedded dataset, a YAML file, or PostgreSQL.
package loader

import (
	"context"
	"fmt"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary/builder"
	"github.com/AniruddhAgrahari/open-read/pkg/config"
	"github.com/AniruddhAgrahari/open-read/pkg/postgres"
)

// Loader produces a dataset batch. Load may be called again at any time to
// refresh the corpus.
type Loader interface {
	Name() string
	Load(ctx context.Context) ([]builder.EntryInput, error)
}

// New selects a Loader from the configured dictionary source. The postgres
// client may be nil unless the source is "postgres".
func New(cfg config.DictionaryConfig, pgCfg config.PostgresConfig, pg *postgres.Client) (Loader, error) {
	switch cfg.Source {
	case "", "builtin":
		return Builtin{}, nil
	case "file":
		if cfg.DatasetPath == "" {
			return nil, fmt.Errorf("dictionary source %q requires datasetPath", cfg.Source)
		}
		return &File{Path: cfg.DatasetPath}, nil
	case "postgres":
		if pg == nil {
			return nil, fmt.Errorf("dictionary source %q requires a postgres connection", cfg.Source)
		}
		return NewPostgres(pg, pgCfg.Table), nil
	default:
		return nil, fmt.Errorf("unknown dictionary source %q", cfg.Source)
	}
}
