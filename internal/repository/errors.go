package repository

import (
	"fmt"

	"github.com/epeers/holdings-dashboard/internal/models"
)

// MissingColumnError reports a required column that a table does not carry.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %q is missing required column %q", e.Table, e.Column)
}

// RowError reports a cell that could not be coerced to its expected type.
// Row is the 1-based data row within the table.
type RowError struct {
	Table  string
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("table %q row %d: column %q value %q: %s", e.Table, e.Row, e.Column, e.Value, e.Reason)
}

// Issue converts the error into the form reported alongside results.
func (e *RowError) Issue(excluded bool) models.RowIssue {
	return models.RowIssue{
		Table:    e.Table,
		Row:      e.Row,
		Column:   e.Column,
		Value:    e.Value,
		Excluded: excluded,
	}
}

// UnavailableError wraps a failure to read a table from its source at all
// (network, permissions, quota). It is distinct from a table with no rows.
type UnavailableError struct {
	Table string
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("table %q is unavailable: %v", e.Table, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
