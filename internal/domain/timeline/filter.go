package timeline

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"
)

// Selection is the filter state of the dashboard. An empty Month or a list
// that is empty or contains SentinelAll matches every row.
type Selection struct {
	Month     string   `json:"month"`
	Statuses  []string `json:"statuses"`
	Assignees []string `json:"assignees"`
}

// Canonical returns an equivalent selection with trimmed, sorted, unique
// values and every "match all" form collapsed to the zero value.
func (s Selection) Canonical() Selection {
	month := strings.TrimSpace(s.Month)
	if month == SentinelAll {
		month = ""
	}
	return Selection{
		Month:     month,
		Statuses:  canonicalList(s.Statuses),
		Assignees: canonicalList(s.Assignees),
	}
}

// Key is a stable identifier of the canonical selection. Values are open
// text, so the key is the JSON encoding rather than a joined string.
func (s Selection) Key() string {
	b, err := json.Marshal(s.Canonical())
	if err != nil {
		panic(err) // strings and string slices always marshal
	}
	return string(b)
}

func canonicalList(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == SentinelAll {
			return nil
		}
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Filter returns the rows matching sel in their original order.
func Filter(rows []Row, sel Selection) []Row {
	sel = sel.Canonical()
	out := make([]Row, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if sel.Month != "" && r.PeriodKey != sel.Month {
			continue
		}
		if !matches(sel.Statuses, r.Status) || !matches(sel.Assignees, r.Assignee) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

func matches(selected []string, v string) bool {
	return len(selected) == 0 || slices.Contains(selected, v)
}

// DisplayRow is a row with its position on the chart axis.
type DisplayRow struct {
	Row
	Ordinal int
}

// MarshalJSON flattens the row and adds its ordinal.
func (d DisplayRow) MarshalJSON() ([]byte, error) { //nolint:gocritic // value receiver so []DisplayRow marshals
	return json.Marshal(struct {
		rowJSON
		Ordinal int `json:"ordinal"`
	}{d.Row.wire(), d.Ordinal})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (d *DisplayRow) UnmarshalJSON(data []byte) error {
	var v struct {
		Ordinal int `json:"ordinal"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := d.Row.UnmarshalJSON(data); err != nil {
		return err
	}
	d.Ordinal = v.Ordinal
	return nil
}

// Order sorts rows by start date, ties kept in source order, then groups
// rows sharing a label under the ordinal of the label's first appearance.
func Order(rows []Row) []DisplayRow {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		return a.Start.Compare(b.Start)
	})

	ordinals := make(map[string]int, len(sorted))
	out := make([]DisplayRow, len(sorted))
	for i := range sorted {
		ord, ok := ordinals[sorted[i].Label]
		if !ok {
			ord = len(ordinals)
			ordinals[sorted[i].Label] = ord
		}
		out[i] = DisplayRow{Row: sorted[i], Ordinal: ord}
	}
	slices.SortStableFunc(out, func(a, b DisplayRow) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	return out
}

// Title describes sel for the chart heading.
func Title(sel Selection) string {
	sel = sel.Canonical()
	statuses := "all statuses"
	if len(sel.Statuses) > 0 {
		statuses = strings.Join(sel.Statuses, ", ")
	}
	month := "all months"
	if sel.Month != "" {
		month = sel.Month
	}
	assignees := "all assignees"
	if len(sel.Assignees) > 0 {
		assignees = strings.Join(sel.Assignees, ", ")
	}
	return statuses + " | " + month + " | " + assignees
}
