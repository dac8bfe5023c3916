package timeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleRows() []Row {
	return []Row{
		NewRow("RN-3", "Backlog", "Lucía", day(2024, 3, 10), day(2024, 4, 2), 30, false),
		NewRow("RN-1", "Entregado", "", day(2024, 3, 1), day(2024, 3, 15), 30, false),
		NewRow("RN-2", "En desarrollo", "Tomás", day(2024, 3, 1), day(2024, 3, 20), 30, false),
		NewRow("rn-1", "Backlog", "Tomás", day(2024, 3, 12), day(2024, 3, 30), 30, false),
	}
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].ID
	}
	return out
}

func TestFilter(t *testing.T) {
	rows := sampleRows()
	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"zero selection", Selection{}, []string{"RN-3", "RN-1", "RN-2", "rn-1"}},
		{"all sentinels", Selection{Month: "all", Statuses: []string{"all"}, Assignees: []string{"all"}}, []string{"RN-3", "RN-1", "RN-2", "rn-1"}},
		{"month", Selection{Month: "2024-03"}, []string{"RN-1", "RN-2", "rn-1"}},
		{"single status", Selection{Statuses: []string{"Backlog"}}, []string{"RN-3", "rn-1"}},
		{"multi status", Selection{Statuses: []string{"Entregado", "En desarrollo"}}, []string{"RN-1", "RN-2"}},
		{"all wins in list", Selection{Statuses: []string{"Entregado", "all"}}, []string{"RN-3", "RN-1", "RN-2", "rn-1"}},
		{"unassigned", Selection{Assignees: []string{SentinelUnassigned}}, []string{"RN-1"}},
		{"combined", Selection{Month: "2024-03", Statuses: []string{"Backlog"}, Assignees: []string{"Tomás"}}, []string{"rn-1"}},
		{"no match", Selection{Month: "2023-01"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(rows, tt.sel))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	before := ids(rows)
	_ = Filter(rows, Selection{Statuses: []string{"Backlog"}})
	if diff := cmp.Diff(before, ids(rows)); diff != "" {
		t.Errorf("input changed (-want +got):\n%s", diff)
	}
}

func TestOrder(t *testing.T) {
	got := Order(sampleRows())

	type pos struct {
		ID      string
		Ordinal int
	}
	var gotPos []pos
	for _, d := range got {
		gotPos = append(gotPos, pos{d.Row.ID, d.Ordinal})
	}
	// RN-1 and RN-2 tie on start and keep source order; rn-1 shares the
	// label of RN-1 and is grouped with it ahead of RN-3.
	want := []pos{
		{"RN-1", 0},
		{"rn-1", 0},
		{"RN-2", 1},
		{"RN-3", 2},
	}
	if diff := cmp.Diff(want, gotPos); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionKey(t *testing.T) {
	a := Selection{Statuses: []string{" Backlog", "Entregado", "Backlog"}, Month: "all"}
	b := Selection{Statuses: []string{"Entregado", "Backlog"}}
	if a.Key() != b.Key() {
		t.Errorf("equivalent selections differ: %q vs %q", a.Key(), b.Key())
	}
	c := Selection{Statuses: []string{"Entregado"}}
	if a.Key() == c.Key() {
		t.Errorf("different selections share key %q", a.Key())
	}

	split := Selection{Statuses: []string{"a", "b"}}
	joined := Selection{Statuses: []string{"a,b"}}
	if split.Key() == joined.Key() {
		t.Errorf("separator inside a value collides: %q", split.Key())
	}
	shifted := Selection{Statuses: []string{"x|a=y"}}
	moved := Selection{Statuses: []string{"x"}, Assignees: []string{"y"}}
	if shifted.Key() == moved.Key() {
		t.Errorf("field marker inside a value collides: %q", shifted.Key())
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		sel  Selection
		want string
	}{
		{Selection{}, "all statuses | all months | all assignees"},
		{Selection{Month: "2024-03", Statuses: []string{"Entregado", "Backlog"}}, "Backlog, Entregado | 2024-03 | all assignees"},
		{Selection{Assignees: []string{"Lucía"}}, "all statuses | all months | Lucía"},
	}
	for _, tt := range tests {
		if got := Title(tt.sel); got != tt.want {
			t.Errorf("Title(%+v) = %q, want %q", tt.sel, got, tt.want)
		}
	}
}

func TestFacetsSortedUniqueAllFirst(t *testing.T) {
	rows := append(sampleRows(), sampleRows()...)
	f := ExtractFacets(rows)
	for name, list := range map[string][]string{"months": f.Months, "statuses": f.Statuses, "assignees": f.Assignees} {
		if len(list) == 0 || list[0] != SentinelAll {
			t.Errorf("%s: sentinel not first: %v", name, list)
			continue
		}
		rest := list[1:]
		for i := 1; i < len(rest); i++ {
			if rest[i-1] >= rest[i] {
				t.Errorf("%s: not sorted and unique: %v", name, list)
			}
		}
	}
	if got := ExtractFacets(nil); len(got.Months) != 1 || got.Months[0] != SentinelAll {
		t.Errorf("empty rows should still yield the sentinel, got %v", got.Months)
	}
}

func TestDisplayRowJSON(t *testing.T) {
	d := DisplayRow{Row: NewRow("RN-1", "Backlog", "", day(2024, 3, 1), day(2024, 3, 15), 30, false), Ordinal: 2}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"id":"RN-1"`,
		`"start":"2024-03-01"`,
		`"end_display":"15-03-2024"`,
		`"duration_days":14`,
		`"ordinal":2`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %s in %s", want, data)
		}
	}

	var back DisplayRow
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, back); diff != "" {
		t.Errorf("decoded row mismatch (-want +got):\n%s", diff)
	}
}
