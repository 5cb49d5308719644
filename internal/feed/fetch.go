package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"announcebot/internal/tabular"
)

type Config struct {
	URL     string
	Timeout time.Duration
}

// Fetcher retrieves and decodes the remote event table.
type Fetcher struct {
	cfg    Config
	client *http.Client
	loc    *time.Location
}

const (
	// The feed starts with a title row and a column-header row.
	headerRows = 2

	// name, date, location; category/attendance/notes are optional.
	requiredFields = 3

	maxBodyBytes = 4 << 20
)

// NewFetcher builds a Fetcher. Event dates are normalized to loc.
func NewFetcher(cfg Config, loc *time.Location) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if loc == nil {
		loc = time.Local
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		loc:    loc,
	}
}

// Fetch downloads the feed and returns its events in feed order.
// Header rows and rows missing any of the three required fields are
// dropped; a row whose date cannot be normalized is kept with a zero
// Start so callers can still render its raw date.
func (f *Fetcher) Fetch(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("feed read: %w", err)
	}

	return f.decode(string(body)), nil
}

func (f *Fetcher) decode(text string) []Event {
	doc := tabular.Parse(text)
	if len(doc) <= headerRows {
		return nil
	}

	var events []Event
	for _, row := range doc[headerRows:] {
		if len(row) < requiredFields {
			continue
		}
		e := Event{
			Name:     strings.TrimSpace(row[0]),
			RawDate:  strings.TrimSpace(row[1]),
			Location: strings.TrimSpace(row[2]),
		}
		if e.Name == "" || e.RawDate == "" || e.Location == "" {
			continue
		}
		if len(row) > 3 {
			e.Category = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			e.Attendance = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			e.Notes = strings.TrimSpace(row[5])
		}
		if start, err := ParseDate(e.RawDate, f.loc); err == nil {
			e.Start = start
		}
		events = append(events, e)
	}
	return events
}
