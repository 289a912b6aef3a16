package models

// WarningCode categorizes warnings by subsystem.
// W3xxx = data quality.
type WarningCode string

const (
	WarnRowExcluded      WarningCode = "W3001" // cell could not be coerced; row or field dropped
	WarnTableSkipped     WarningCode = "W3002" // optional table lacks a required column
	WarnUndatedRows      WarningCode = "W3003" // rows with an unparseable date, not attributable to any date
	WarnBenchmarkMissing WarningCode = "W3004" // configured benchmark index has no row for the date
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
