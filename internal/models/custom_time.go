package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// sheetDateLayouts are the formats spreadsheets commonly export dates in.
var sheetDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"2006/01/02",
}

// ParseDate parses a spreadsheet date cell and returns the calendar day at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range sheetDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FlexibleDate is a calendar date that marshals as "YYYY-MM-DD" and accepts any
// format ParseDate understands.
type FlexibleDate struct {
	time.Time
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexibleDate) UnmarshalJSON(b []byte) error {
	t, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexibleDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Format(DateLayout))
}
