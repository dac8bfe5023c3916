package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateColumnStrategies(t *testing.T) {
	tests := []struct {
		name     string
		cells    []string
		strategy string
		want     []time.Time
	}{
		{
			name:     "slash day first",
			cells:    []string{"01/03/2024", "5/3/2024", ""},
			strategy: StrategySlash,
			want:     []time.Time{day(2024, 3, 1), day(2024, 3, 5), {}},
		},
		{
			name:     "dash day first",
			cells:    []string{"15-03-2024", "20-03-2024"},
			strategy: StrategyDash,
			want:     []time.Time{day(2024, 3, 15), day(2024, 3, 20)},
		},
		{
			name:     "dotted with time and short year",
			cells:    []string{"15.03.24 10:30", "1.4.24"},
			strategy: StrategyDayFirst,
			want:     []time.Time{day(2024, 3, 15), day(2024, 4, 1)},
		},
		{
			name:     "iso",
			cells:    []string{"2024-03-15", "2024-04-01T08:00:00"},
			strategy: StrategyDayFirst,
			want:     []time.Time{day(2024, 3, 15), day(2024, 4, 1)},
		},
		{
			name:     "free form",
			cells:    []string{"March 5, 2024", "April 1, 2024"},
			strategy: StrategyInferred,
			want:     []time.Time{day(2024, 3, 5), day(2024, 4, 1)},
		},
		{
			name:     "serial numbers",
			cells:    []string{"45352", "45366.5", ""},
			strategy: StrategySerial,
			want:     []time.Time{day(2024, 3, 1), day(2024, 3, 15), {}},
		},
		{
			name:     "half parse keeps best strategy",
			cells:    []string{"01/03/2024", "bad-date"},
			strategy: StrategySlash,
			want:     []time.Time{day(2024, 3, 1), {}},
		},
		{
			name:     "half is not a majority",
			cells:    []string{"01/03/2024", "15-03-2024"},
			strategy: StrategyDayFirst,
			want:     []time.Time{day(2024, 3, 1), day(2024, 3, 15)},
		},
		{
			name:     "all empty",
			cells:    []string{"", " "},
			strategy: StrategyNone,
			want:     []time.Time{{}, {}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := ParseDateColumn(FieldStart, tt.cells, 0.5)
			if err != nil {
				t.Fatalf("ParseDateColumn: %v", err)
			}
			if col.Strategy != tt.strategy {
				t.Errorf("strategy = %s, want %s", col.Strategy, tt.strategy)
			}
			if diff := cmp.Diff(tt.want, col.Values); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDateColumnRejectsImpossibleDates(t *testing.T) {
	col, err := ParseDateColumn(FieldEnd, []string{"31/02/2024", "15/03/2024"}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !col.Values[0].IsZero() {
		t.Errorf("31/02 should not parse, got %v", col.Values[0])
	}
	if !col.Values[1].Equal(day(2024, 3, 15)) {
		t.Errorf("got %v", col.Values[1])
	}
}

func TestParseDateColumnBestEffort(t *testing.T) {
	// One in four parses under every strategy: below the ratio, so the
	// first strategy with the most hits is kept.
	col, err := ParseDateColumn(FieldStart, []string{"01/03/2024", "x", "y", "z"}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if col.Strategy != StrategySlash {
		t.Errorf("strategy = %s, want %s", col.Strategy, StrategySlash)
	}
}

func TestParseDateColumnExhausted(t *testing.T) {
	_, err := ParseDateColumn(FieldEnd, []string{"pronto", "tbd", "n/a"}, 0.5)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Column != FieldEnd {
		t.Errorf("column = %s, want end", pe.Column)
	}
	if diff := cmp.Diff([]string{"pronto", "tbd", "n/a"}, pe.Samples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}
