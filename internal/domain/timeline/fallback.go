package timeline

import "time"

var fallbackIDs = []string{"Error - no data", "Example 2", "Example 3"}

const fallbackSpanDays = 30

// fallbackEpoch is the start date of the first placeholder row.
var fallbackEpoch = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// FallbackRows returns the placeholder rows shown when a run fails: one per
// day from fallbackEpoch, each lasting thirty days, all with StatusError.
func FallbackRows(labelMax int) []Row {
	rows := make([]Row, len(fallbackIDs))
	for i, id := range fallbackIDs {
		start := fallbackEpoch.AddDate(0, 0, i)
		rows[i] = NewRow(id, StatusError, "", start, start.AddDate(0, 0, fallbackSpanDays), labelMax, false)
	}
	return rows
}

// Fallback builds the snapshot stored after a failed run.
func Fallback(id, source string, loadedAt time.Time, labelMax int, cause error) Snapshot {
	rows := FallbackRows(labelMax)
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return Snapshot{
		ID:       id,
		Rows:     rows,
		Facets:   ExtractFacets(rows),
		LoadedAt: loadedAt,
		Source:   source,
		Fallback: true,
		Error:    msg,
	}
}
