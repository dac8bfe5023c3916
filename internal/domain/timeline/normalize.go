package timeline

import (
	"fmt"
	"time"
)

// Admission decides what happens to rows with a missing date.
type Admission string

const (
	// AdmissionStrict drops any row missing a date.
	AdmissionStrict Admission = "strict"
	// AdmissionImpute fills one missing date from the other before dropping.
	AdmissionImpute Admission = "impute"
)

// Exclusion reasons recorded in Report.Exclusions.
const (
	ExcludedMissingID    = "missing_id"
	ExcludedMissingStart = "missing_start"
	ExcludedMissingEnd   = "missing_end"
)

// Policy configures one normalisation run.
type Policy struct {
	Layout          Layout
	LabelMax        int
	MinParseRatio   float64
	Admission       Admission
	ImputeEndDays   int
	ImputeStartDays int
}

// DefaultPolicy matches the column names of the published sheets.
func DefaultPolicy() Policy {
	return Policy{
		Layout: Layout{Columns: Columns{
			ID:       []string{"rn"},
			Status:   []string{"estado"},
			Start:    []string{"inicio"},
			End:      []string{"fin"},
			Assignee: []string{"afu asignado"},
		}},
		LabelMax:        30,
		MinParseRatio:   0.5,
		Admission:       AdmissionStrict,
		ImputeEndDays:   7,
		ImputeStartDays: 30,
	}
}

// Validate checks the policy before a run.
func (p *Policy) Validate() error {
	if p.LabelMax < 1 {
		return fmt.Errorf("label max must be positive, got %d", p.LabelMax)
	}
	if p.MinParseRatio <= 0 || p.MinParseRatio > 1 {
		return fmt.Errorf("min parse ratio must be in (0, 1], got %v", p.MinParseRatio)
	}
	if p.Admission != AdmissionStrict && p.Admission != AdmissionImpute {
		return fmt.Errorf("invalid admission %q", p.Admission)
	}
	return nil
}

// Result is the normalised content of a table.
type Result struct {
	Rows   []Row
	Facets Facets
	Report Report
}

// Normalize turns a raw table into admitted rows and their facets.
// It returns *SchemaError, *ParseError or *EmptyResultError when no usable
// row set can be produced.
func Normalize(t Table, p Policy) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	records, err := p.Layout.Records(t)
	if err != nil {
		return Result{}, err
	}

	starts, err := parseColumn(records, FieldStart, p.MinParseRatio)
	if err != nil {
		return Result{}, err
	}
	ends, err := parseColumn(records, FieldEnd, p.MinParseRatio)
	if err != nil {
		return Result{}, err
	}

	report := Report{
		Total:      len(records),
		Exclusions: map[string]int{},
		Strategies: map[Field]string{
			FieldStart: starts.Strategy,
			FieldEnd:   ends.Strategy,
		},
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, reason := p.admit(rec, starts.Values[i], ends.Values[i])
		if reason != "" {
			report.Excluded++
			report.Exclusions[reason]++
			continue
		}
		if row.Imputed {
			report.Imputed++
		}
		rows = append(rows, row)
	}
	report.Admitted = len(rows)

	if len(rows) == 0 {
		return Result{Report: report}, &EmptyResultError{Total: report.Total, Excluded: report.Excluded}
	}

	return Result{Rows: rows, Facets: ExtractFacets(rows), Report: report}, nil
}

func parseColumn(records []RawRecord, f Field, minRatio float64) (DateColumn, error) {
	cells := make([]string, len(records))
	for i, rec := range records {
		cells[i] = rec[f]
	}
	return ParseDateColumn(f, cells, minRatio)
}

// admit builds the row for rec or returns the reason it was excluded.
func (p *Policy) admit(rec RawRecord, start, end time.Time) (Row, string) {
	id := CleanText(rec[FieldID])
	if id == "" {
		return Row{}, ExcludedMissingID
	}

	imputed := false
	if p.Admission == AdmissionImpute {
		switch {
		case !start.IsZero() && end.IsZero():
			end = start.AddDate(0, 0, p.ImputeEndDays)
			imputed = true
		case start.IsZero() && !end.IsZero():
			start = end.AddDate(0, 0, -p.ImputeStartDays)
			imputed = true
		}
	}
	if start.IsZero() {
		return Row{}, ExcludedMissingStart
	}
	if end.IsZero() {
		return Row{}, ExcludedMissingEnd
	}

	return NewRow(id, rec[FieldStatus], rec[FieldAssignee], start, end, p.LabelMax, imputed), ""
}

// NewRow cleans the text fields and derives label, duration and period.
func NewRow(id, status, assignee string, start, end time.Time, labelMax int, imputed bool) Row {
	id = CleanText(id)
	return Row{
		ID:           id,
		Label:        Label(id, labelMax),
		Status:       orUnassigned(CleanText(status)),
		Assignee:     orUnassigned(CleanText(assignee)),
		Start:        start,
		End:          end,
		DurationDays: DaysBetween(start, end),
		PeriodKey:    end.Format(PeriodLayout),
		Imputed:      imputed,
	}
}

// DaysBetween returns whole calendar days from start to end; negative when
// end precedes start.
func DaysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

func orUnassigned(s string) string {
	if s == "" {
		return SentinelUnassigned
	}
	return s
}
