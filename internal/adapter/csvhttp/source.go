// Package csvhttp implements the source port for a published CSV export,
// fetched over HTTP or read from a local file.
package csvhttp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

const (
	kind = "csv"

	// maxBodyBytes bounds a single export download.
	maxBodyBytes = 32 << 20

	cacheBustParam = "timestamp"
)

// Source reads a CSV export.
type Source struct {
	locator   string
	target    *url.URL // nil for local files
	path      string
	client    *http.Client
	cacheBust bool
	lastStamp atomic.Int64
	now       func() time.Time
}

// New creates a Source from cfg.URL. URLs without an http(s) scheme are
// treated as local file paths.
func New(cfg config.Source) (*Source, error) {
	s := &Source{
		client:    &http.Client{Timeout: cfg.Timeout},
		cacheBust: cfg.CacheBust,
		now:       time.Now,
	}

	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		s.path = strings.TrimPrefix(cfg.URL, "file://")
		s.locator = s.path
		return s, nil
	}
	s.target = u
	s.locator = u.Redacted()
	return s, nil
}

// Locator returns the URL with credentials masked, or the file path.
func (s *Source) Locator() string { return s.locator }

// Path returns the local file path, empty for HTTP sources.
func (s *Source) Path() string { return s.path }

// Fetch downloads and parses the export.
func (s *Source) Fetch(ctx context.Context) (timeline.Table, error) {
	var (
		body io.ReadCloser
		err  error
	)
	if s.target == nil {
		body, err = os.Open(s.path)
		if err != nil {
			return timeline.Table{}, &timeline.TransportError{Source: s.locator, Err: err}
		}
	} else {
		body, err = s.get(ctx)
		if err != nil {
			return timeline.Table{}, err
		}
	}
	defer func() { _ = body.Close() }()

	cells, err := Parse(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return timeline.Table{}, fmt.Errorf("csv %s: %w", s.locator, err)
	}
	return timeline.Table{Cells: cells, Source: s.locator}, nil
}

func (s *Source) get(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(), http.NoBody)
	if err != nil {
		return nil, &timeline.TransportError{Source: s.locator, Err: err}
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &timeline.TransportError{Source: s.locator, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &timeline.TransportError{Source: s.locator, Status: resp.StatusCode}
	}
	return resp.Body, nil
}

// requestURL appends the cache-busting stamp when enabled.
func (s *Source) requestURL() string {
	if !s.cacheBust {
		return s.target.String()
	}
	u := *s.target
	q := u.Query()
	q.Set(cacheBustParam, strconv.FormatInt(s.nextStamp(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// nextStamp returns the current unix second, or one past the previous stamp
// when the clock has not advanced, so no two requests share a stamp.
func (s *Source) nextStamp() int64 {
	for {
		last := s.lastStamp.Load()
		stamp := s.now().Unix()
		if stamp <= last {
			stamp = last + 1
		}
		if s.lastStamp.CompareAndSwap(last, stamp) {
			return stamp
		}
	}
}

// Parse reads CSV text into a grid. Rows may have differing widths and a
// leading byte order mark is dropped.
func Parse(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return cr.ReadAll()
}
