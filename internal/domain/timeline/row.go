// Package timeline holds the ingestion and normalisation rules that turn a
// loosely formatted spreadsheet into an immutable snapshot of Gantt rows.
package timeline

import (
	"encoding/json"
	"time"
)

const (
	// SentinelAll is the facet value that matches every row.
	SentinelAll = "all"
	// SentinelUnassigned replaces an empty status or assignee.
	SentinelUnassigned = "unassigned"
	// StatusError marks placeholder rows of a fallback snapshot.
	StatusError = "Error"

	// DateLayout is the wire format for row dates.
	DateLayout = "2006-01-02"
	// DisplayLayout is the day-first format shown on hover.
	DisplayLayout = "02-01-2006"
	// PeriodLayout formats the month a row ends in.
	PeriodLayout = "2006-01"
)

// Field is a logical column of the source table.
type Field string

const (
	FieldID       Field = "id"
	FieldStatus   Field = "status"
	FieldStart    Field = "start"
	FieldEnd      Field = "end"
	FieldAssignee Field = "assignee"
)

// requiredFields are the columns without which no row can be built.
var requiredFields = []Field{FieldID, FieldStatus, FieldStart, FieldEnd}

// Table is the raw grid returned by a source: every row as fetched,
// header row included, all cells as text.
type Table struct {
	Cells  [][]string
	Source string // locator suitable for display, secrets removed
}

// RawRecord is one source row keyed by logical column.
type RawRecord map[Field]string

// Row is a normalised timeline entry.
type Row struct {
	ID           string
	Label        string
	Status       string
	Assignee     string
	Start        time.Time
	End          time.Time
	DurationDays int
	PeriodKey    string
	Imputed      bool
}

type rowJSON struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Status       string `json:"status"`
	Assignee     string `json:"assignee"`
	Start        string `json:"start"`
	End          string `json:"end"`
	StartDisplay string `json:"start_display"`
	EndDisplay   string `json:"end_display"`
	DurationDays int    `json:"duration_days"`
	PeriodKey    string `json:"period_key"`
	Imputed      bool   `json:"imputed,omitempty"`
}

// MarshalJSON writes dates as calendar days plus their day-first display form.
func (r Row) MarshalJSON() ([]byte, error) { //nolint:gocritic // value receiver so []Row marshals
	return json.Marshal(r.wire())
}

func (r *Row) wire() rowJSON {
	return rowJSON{
		ID:           r.ID,
		Label:        r.Label,
		Status:       r.Status,
		Assignee:     r.Assignee,
		Start:        r.Start.Format(DateLayout),
		End:          r.End.Format(DateLayout),
		StartDisplay: r.Start.Format(DisplayLayout),
		EndDisplay:   r.End.Format(DisplayLayout),
		DurationDays: r.DurationDays,
		PeriodKey:    r.PeriodKey,
		Imputed:      r.Imputed,
	}
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (r *Row) UnmarshalJSON(data []byte) error {
	var v rowJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	start, err := time.Parse(DateLayout, v.Start)
	if err != nil {
		return err
	}
	end, err := time.Parse(DateLayout, v.End)
	if err != nil {
		return err
	}
	*r = Row{
		ID:           v.ID,
		Label:        v.Label,
		Status:       v.Status,
		Assignee:     v.Assignee,
		Start:        start,
		End:          end,
		DurationDays: v.DurationDays,
		PeriodKey:    v.PeriodKey,
		Imputed:      v.Imputed,
	}
	return nil
}

// Facets are the selectable values of each filter, SentinelAll first.
type Facets struct {
	Months    []string `json:"months"`
	Statuses  []string `json:"statuses"`
	Assignees []string `json:"assignees"`
}

// Report summarises one ingestion run.
type Report struct {
	Total      int              `json:"total"`
	Admitted   int              `json:"admitted"`
	Excluded   int              `json:"excluded"`
	Imputed    int              `json:"imputed"`
	Exclusions map[string]int   `json:"exclusions,omitempty"` // reason -> count
	Strategies map[Field]string `json:"strategies,omitempty"` // date column -> chosen strategy
}

// Snapshot is the immutable result of one ingestion run.
type Snapshot struct {
	ID       string    `json:"id"`
	Rows     []Row     `json:"rows"`
	Facets   Facets    `json:"facets"`
	LoadedAt time.Time `json:"loaded_at"`
	Source   string    `json:"source"`
	Fallback bool      `json:"fallback"`
	Error    string    `json:"error,omitempty"`
	Report   Report    `json:"report"`
}
