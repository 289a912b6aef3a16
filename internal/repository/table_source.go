package repository

import (
	"context"

	"github.com/epeers/holdings-dashboard/internal/models"
)

// TableSource reads a whole named table as text records.
// Implemented by sheets.Client and PostgresSource.
type TableSource interface {
	ReadTable(ctx context.Context, name string) ([]models.Record, error)
}
