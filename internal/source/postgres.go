package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"calllog/internal/calllog"
)

// PostgresSource reads a call table newest first. Columns are discovered per
// query, so extra columns in the table flow through to the output unchanged.
type PostgresSource struct {
	db    *sql.DB
	table string
}

func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Open(ctx context.Context) (calllog.Stream, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: postgres connection not configured", calllog.ErrSourceUnavailable)
	}

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC",
		pq.QuoteIdentifier(s.table),
		pq.QuoteIdentifier(calllog.ColumnDate),
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", calllog.ErrSourceUnavailable, err)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("%w: failed to read columns: %w", calllog.ErrSourceUnavailable, err)
	}

	return &rowsStream{rows: rows, columns: columns}, nil
}

type rowsStream struct {
	rows    *sql.Rows
	columns []string
	current calllog.RawCallRecord
	err     error
}

func (s *rowsStream) Next(context.Context) bool {
	if s.err != nil || !s.rows.Next() {
		return false
	}

	values := make([]sql.NullString, len(s.columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}

	if err := s.rows.Scan(dest...); err != nil {
		s.err = fmt.Errorf("failed to scan call row: %w", err)
		return false
	}

	record := make(calllog.RawCallRecord, len(s.columns))
	for i, column := range s.columns {
		if values[i].Valid {
			record[column] = values[i].String
		} else {
			record[column] = nil
		}
	}
	s.current = record
	return true
}

func (s *rowsStream) Record() calllog.RawCallRecord {
	return s.current
}

func (s *rowsStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.rows.Err()
}

func (s *rowsStream) Close() error {
	return s.rows.Close()
}
