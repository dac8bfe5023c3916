// Package gsheets implements the source port on the Google Sheets API.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

const kind = "gsheets"

// Source reads a range of a spreadsheet as formatted text.
type Source struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
	cfg           config.Source
}

// New builds a Sheets client authenticated with a service account file,
// an API key, or nothing (public sheets), in that order of preference.
func New(cfg config.Source) (*Source, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("gsheets: read credentials: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("gsheets: parse credentials: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(jwt.Client(ctx)))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	return newWithOptions(ctx, cfg, opts...)
}

func newWithOptions(ctx context.Context, cfg config.Source, opts ...option.ClientOption) (*Source, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gsheets: create service: %w", err)
	}
	rng := cfg.Range
	if cfg.Sheet != "" {
		rng = fmt.Sprintf("'%s'!%s", cfg.Sheet, cfg.Range)
	}
	return &Source{svc: svc, spreadsheetID: cfg.SpreadsheetID, readRange: rng, cfg: cfg}, nil
}

// Locator identifies the spreadsheet and range.
func (s *Source) Locator() string {
	return fmt.Sprintf("gsheets:%s/%s", s.spreadsheetID, s.readRange)
}

// Fetch reads the configured range.
func (s *Source) Fetch(ctx context.Context) (timeline.Table, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		te := &timeline.TransportError{Source: s.Locator(), Err: err}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			te.Status = gerr.Code
		}
		return timeline.Table{}, te
	}

	cells := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[i][j] = fmt.Sprint(v)
			}
		}
	}
	return timeline.Table{Cells: cells, Source: s.Locator()}, nil
}
