// Package xlsx implements the source port for Excel workbooks on disk or
// behind a URL.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

const (
	kind         = "xlsx"
	maxBodyBytes = 64 << 20
)

// Source reads one worksheet of a workbook.
type Source struct {
	path   string
	target *url.URL
	sheet  string
	client *http.Client
}

// New creates a workbook source. An empty cfg.Sheet selects the first sheet.
func New(cfg config.Source) (*Source, error) {
	s := &Source{
		sheet:  cfg.Sheet,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if u, err := url.Parse(cfg.URL); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		s.target = u
		return s, nil
	}
	s.path = strings.TrimPrefix(cfg.URL, "file://")
	if s.path == "" {
		return nil, fmt.Errorf("xlsx: empty workbook path")
	}
	return s, nil
}

// Locator returns the workbook path or redacted URL.
func (s *Source) Locator() string {
	if s.target != nil {
		return s.target.Redacted()
	}
	return s.path
}

// Path returns the local workbook path, empty for remote workbooks.
func (s *Source) Path() string { return s.path }

// Fetch opens the workbook and returns the selected sheet. Cell values are
// read raw, so date cells arrive as serial numbers.
func (s *Source) Fetch(ctx context.Context) (timeline.Table, error) {
	f, err := s.open(ctx)
	if err != nil {
		return timeline.Table{}, err
	}
	defer func() { _ = f.Close() }()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return timeline.Table{}, fmt.Errorf("xlsx %s: sheet %q not found (have %v)", s.Locator(), sheet, f.GetSheetList())
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return timeline.Table{}, fmt.Errorf("xlsx %s: read sheet %q: %w", s.Locator(), sheet, err)
	}
	return timeline.Table{Cells: rows, Source: s.Locator()}, nil
}

func (s *Source) open(ctx context.Context) (*excelize.File, error) {
	if s.target == nil {
		f, err := excelize.OpenFile(s.path)
		if err != nil {
			return nil, &timeline.TransportError{Source: s.path, Err: err}
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.target.String(), http.NoBody)
	if err != nil {
		return nil, &timeline.TransportError{Source: s.Locator(), Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &timeline.TransportError{Source: s.Locator(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &timeline.TransportError{Source: s.Locator(), Status: resp.StatusCode}
	}

	f, err := excelize.OpenReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("xlsx %s: %w", s.Locator(), err)
	}
	return f, nil
}
