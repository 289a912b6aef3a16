package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads snapshot tables from PostgreSQL. Each logical table is a
// database table (or view) of the same name whose columns mirror the worksheet.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a new PostgresSource
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// ReadTable returns every row of the named table with all values as text,
// the same shape a worksheet export has. NULL becomes an empty cell.
func (s *PostgresSource) ReadTable(ctx context.Context, name string) ([]models.Record, error) {
	query := "SELECT * FROM " + pgx.Identifier{name}.Sanitize()

	// The simple protocol returns every column in text format.
	rows, err := s.pool.Query(ctx, query, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = strings.ToLower(strings.TrimSpace(fd.Name))
	}

	var records []models.Record
	for rows.Next() {
		raw := rows.RawValues()
		rec := make(models.Record, len(columns))
		for i, col := range columns {
			if i < len(raw) && raw[i] != nil {
				rec[col] = string(raw[i])
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	return records, nil
}
