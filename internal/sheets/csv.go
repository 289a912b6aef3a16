package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/epeers/holdings-dashboard/internal/models"
)

// ParseCSV reads a worksheet export into records keyed by normalized header
// ("Asset Class" becomes "asset_class"). Columns with a blank header are dropped and rows whose cells are all
// blank are skipped. Short rows leave the missing columns out of the record.
func ParseCSV(r io.Reader) ([]models.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = NormalizeColumn(col)
	}

	var records []models.Record
	rowNum := 1 // header is row 1, data starts at row 2
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", rowNum+1, err)
		}
		rowNum++

		rec := make(models.Record, len(columns))
		blank := true
		for i, col := range columns {
			if col == "" || i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			rec[col] = v
			if v != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// NormalizeColumn lower-cases a header, trims it and joins its words with underscores.
func NormalizeColumn(col string) string {
	return strings.Join(strings.Fields(strings.ToLower(col)), "_")
}
