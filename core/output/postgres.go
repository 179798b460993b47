package output

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// DefaultTable receives summary rows when no table is configured.
const DefaultTable = "product_rows"

var copyColumns = []string{"run_id", "position", "url", "product_description", "product_link"}

// PostgresSink mirrors a batch summary into PostgreSQL, one row per summary line.
type PostgresSink struct {
	pool  *pgxpool.Pool
	table string
	runID string
}

// NewPostgresSink connects, verifies the connection and ensures the table exists.
func NewPostgresSink(ctx context.Context, dsn, table, runID string) (*PostgresSink, error) {
	if table == "" {
		table = DefaultTable
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	sink := &PostgresSink{pool: pool, table: table, runID: runID}
	if err := sink.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

func (s *PostgresSink) ensureSchema(ctx context.Context) error {
	name := pgx.Identifier{s.table}.Sanitize()
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                  BIGSERIAL PRIMARY KEY,
			run_id              TEXT        NOT NULL,
			position            INTEGER     NOT NULL,
			url                 TEXT        NOT NULL,
			product_description TEXT        NOT NULL,
			product_link        TEXT        NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS %s ON %s(run_id);
	`, name, pgx.Identifier{s.table + "_run_id_idx"}.Sanitize(), name))
	if err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// WriteSummary copies every row of the run into the table.
func (s *PostgresSink) WriteSummary(ctx context.Context, rows []schema.Row) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{s.table}, copyColumns,
		pgx.CopyFromRows(copyRows(s.runID, rows)))
	if err != nil {
		return fmt.Errorf("postgres: copy rows: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("postgres: copied %d of %d rows", n, len(rows))
	}
	return nil
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}

// copyRows lays rows out in copyColumns order, keeping batch position.
func copyRows(runID string, rows []schema.Row) [][]any {
	out := make([][]any, 0, len(rows))
	for i, r := range rows {
		out = append(out, []any{runID, int32(i), r.URL, r.ProductDescription, r.ProductLink})
	}
	return out
}
