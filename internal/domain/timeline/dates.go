package timeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Strategy names reported per date column.
const (
	StrategySerial   = "serial"
	StrategySlash    = "dd/mm/yyyy"
	StrategyDash     = "dd-mm-yyyy"
	StrategyDayFirst = "day-first"
	StrategyInferred = "inferred"
	StrategyNone     = "none"
)

// serialEpoch is day zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31.
const maxSerial = 2958465

type dateStrategy struct {
	name  string
	parse func(string) (time.Time, bool)
}

// textStrategies are tried in order until one reaches the configured ratio.
var textStrategies = []dateStrategy{
	{StrategySlash, layout("2/1/2006")},
	{StrategyDash, layout("2-1-2006")},
	{StrategyDayFirst, parseDayFirst},
	{StrategyInferred, parseInferred},
}

// DateColumn is the outcome of parsing one date column. A zero time marks a
// cell that did not parse.
type DateColumn struct {
	Values   []time.Time
	Strategy string
}

// ParseDateColumn picks a strategy for cells and parses every cell with it.
//
// A column whose non-empty cells are all numeric is decoded as serial dates.
// Otherwise the first strategy parsing more than minRatio of the non-empty
// cells, or all of them, wins; failing that, the earliest strategy with the
// most successes. A column
// with values where nothing parses returns a *ParseError.
func ParseDateColumn(field Field, cells []string, minRatio float64) (DateColumn, error) {
	trimmed := make([]string, len(cells))
	nonEmpty := 0
	for i, c := range cells {
		trimmed[i] = strings.TrimSpace(c)
		if trimmed[i] != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return DateColumn{Values: make([]time.Time, len(cells)), Strategy: StrategyNone}, nil
	}

	if serialColumn(trimmed) {
		return apply(trimmed, dateStrategy{StrategySerial, parseSerial}), nil
	}

	bestIdx, bestHits := -1, 0
	for i, s := range textStrategies {
		hits := 0
		for _, c := range trimmed {
			if c == "" {
				continue
			}
			if _, ok := s.parse(c); ok {
				hits++
			}
		}
		if hits == nonEmpty || float64(hits)/float64(nonEmpty) > minRatio {
			return apply(trimmed, s), nil
		}
		if hits > bestHits {
			bestIdx, bestHits = i, hits
		}
	}
	if bestIdx < 0 {
		return DateColumn{}, &ParseError{Column: field, Samples: samples(trimmed, 3)}
	}
	return apply(trimmed, textStrategies[bestIdx]), nil
}

func apply(cells []string, s dateStrategy) DateColumn {
	out := DateColumn{Values: make([]time.Time, len(cells)), Strategy: s.name}
	for i, c := range cells {
		if c == "" {
			continue
		}
		if t, ok := s.parse(c); ok {
			out.Values[i] = t
		}
	}
	return out
}

func serialColumn(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			continue
		}
		if _, ok := parseSerial(c); !ok {
			return false
		}
	}
	return true
}

func parseSerial(s string) (time.Time, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 1 || v > maxSerial {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(math.Floor(v))), true
}

func layout(l string) func(string) (time.Time, bool) {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(l, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

var (
	dayFirstRe = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})(?:[ T].*)?$`)
	isoRe      = regexp.MustCompile(`^(\d{4})[/.\-](\d{1,2})[/.\-](\d{1,2})(?:[ T].*)?$`)
)

// parseDayFirst reads D/M/Y with any of / - . as separator, an optional
// trailing time, or a year-first date.
func parseDayFirst(s string) (time.Time, bool) {
	if m := isoRe.FindStringSubmatch(s); m != nil {
		return civil(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	m := dayFirstRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	year := atoi(m[3])
	if len(m[3]) == 2 {
		// strptime %y pivot
		if year < 69 {
			year += 2000
		} else {
			year += 1900
		}
	}
	return civil(year, atoi(m[2]), atoi(m[1]))
}

// parseInferred accepts anything dateparse recognises, truncated to its calendar day.
func parseInferred(s string) (time.Time, bool) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return civil(t.Year(), int(t.Month()), t.Day())
}

// civil builds a UTC date, rejecting values time.Date would normalise.
func civil(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func samples(cells []string, n int) []string {
	var out []string
	for _, c := range cells {
		if c == "" {
			continue
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}
