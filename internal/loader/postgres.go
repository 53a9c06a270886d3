package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary/builder"
	"github.com/AniruddhAgrahari/open-read/pkg/logger"
	"github.com/AniruddhAgrahari/open-read/pkg/postgres"
	"github.com/AniruddhAgrahari/open-read/pkg/resilience"
)

// Postgres loads the dataset from a dictionary table. Refreshes are
// re-invocable, so fetches run behind a circuit breaker to avoid hammering a
// database that is already down, with a short retry for transient failures.
type Postgres struct {
	client  *postgres.Client
	table   string
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

// NewPostgres creates a Postgres loader reading from the given table.
func NewPostgres(client *postgres.Client, table string) *Postgres {
	if table == "" {
		table = "dictionary_entries"
	}
	return &Postgres{
		client:  client,
		table:   table,
		breaker: resilience.NewCircuitBreaker("dataset-fetch", resilience.CircuitBreakerConfig{}),
		logger:  logger.WithComponent("postgres-loader"),
	}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Load(ctx context.Context) ([]builder.EntryInput, error) {
	var entries []builder.EntryInput
	err := p.breaker.Execute(func() error {
		return resilience.Retry(ctx, "dataset-fetch", resilience.RetryConfig{MaxAttempts: 3}, func() error {
			fetched, err := p.fetch(ctx)
			if err != nil {
				return err
			}
			entries = fetched
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("dataset loaded", "table", p.table, "entries", len(entries))
	return entries, nil
}

func (p *Postgres) fetch(ctx context.Context) ([]builder.EntryInput, error) {
	query := fmt.Sprintf("SELECT term, definition FROM %s ORDER BY id", p.table)
	rows, err := p.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", p.table, err)
	}
	defer rows.Close()

	var entries []builder.EntryInput
	for rows.Next() {
		var in builder.EntryInput
		if err := rows.Scan(&in.Term, &in.Definition); err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}
		entries = append(entries, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dataset rows: %w", err)
	}
	return entries, nil
}
