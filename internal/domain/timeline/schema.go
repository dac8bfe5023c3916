package timeline

import "strings"

// Columns lists the accepted header aliases for each logical field.
type Columns struct {
	ID       []string
	Status   []string
	Start    []string
	End      []string
	Assignee []string
}

func (c Columns) aliases(f Field) []string {
	switch f {
	case FieldID:
		return c.ID
	case FieldStatus:
		return c.Status
	case FieldStart:
		return c.Start
	case FieldEnd:
		return c.End
	case FieldAssignee:
		return c.Assignee
	}
	return nil
}

// Layout describes where the fields live in a source table.
//
// SkipRows leading rows are discarded; the next row is the header. When
// Positions is set, fields are taken by zero-based column index in the order
// id, status, start, end and optionally assignee, and header names are ignored.
type Layout struct {
	Columns   Columns
	SkipRows  int
	Positions []int
}

// Records resolves the table against the layout and returns one RawRecord
// per non-blank data row.
func (l Layout) Records(t Table) ([]RawRecord, error) {
	rows := t.Cells
	if l.SkipRows > 0 {
		if l.SkipRows >= len(rows) {
			rows = nil
		} else {
			rows = rows[l.SkipRows:]
		}
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
		rows = rows[1:]
	}

	index, err := l.resolve(header)
	if err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		rec := make(RawRecord, len(index))
		for f, i := range index {
			rec[f] = cell(row, i)
		}
		records = append(records, rec)
	}
	return records, nil
}

// resolve maps each field to its column index.
func (l Layout) resolve(header []string) (map[Field]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeHeader(h)
	}

	index := make(map[Field]int, len(requiredFields)+1)
	if len(l.Positions) > 0 {
		fields := append(append([]Field{}, requiredFields...), FieldAssignee)
		for i, pos := range l.Positions {
			if i >= len(fields) {
				break
			}
			if pos >= 0 && pos < len(header) {
				index[fields[i]] = pos
			}
		}
	} else {
		byName := make(map[string]int, len(normalized))
		for i, h := range normalized {
			if _, dup := byName[h]; !dup && h != "" {
				byName[h] = i
			}
		}
		for _, f := range append(append([]Field{}, requiredFields...), FieldAssignee) {
			for _, alias := range l.Columns.aliases(f) {
				if i, ok := byName[NormalizeHeader(alias)]; ok {
					index[f] = i
					break
				}
			}
		}
	}

	var missing []Field
	for _, f := range requiredFields {
		if _, ok := index[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Header: normalized}
	}
	return index, nil
}

// cell returns the value at column i, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
