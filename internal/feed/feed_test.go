package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseDateVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "plain", raw: "12 August 2026", want: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)},
		{name: "range keeps start", raw: "12-14 August 2026", want: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)},
		{name: "case-insensitive month", raw: "3 OCTOBER 2026", want: time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding space", raw: " 1 May 2027 ", want: time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDate(tt.raw, time.UTC)
			if err != nil {
				t.Fatalf("ParseDate(%q) error: %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDateFailureModes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "too few tokens", raw: "12 August", want: ErrDateTokens},
		{name: "too many tokens", raw: "12 August 2026 extra", want: ErrDateTokens},
		{name: "bad day", raw: "soon August 2026", want: ErrDateDay},
		{name: "bad month", raw: "12 Augustus 2026", want: ErrDateMonth},
		{name: "bad year", raw: "12 August twenty", want: ErrDateYear},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDate(tt.raw, time.UTC)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseDate(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
		})
	}
}

func TestFilterWindowEdges(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	in := Event{Name: "in", Start: now.Add(7*24*time.Hour + 14*time.Hour)}
	out := Event{Name: "out", Start: now.Add(7*24*time.Hour + 16*time.Hour)}
	past := Event{Name: "past", Start: now.Add(-time.Hour)}
	undated := Event{Name: "undated", RawDate: "sometime soon"}

	got := Filter([]Event{in, out, past, undated}, now)
	if len(got) != 1 || got[0].Name != "in" {
		t.Fatalf("Filter = %v, want only the +7d14h event", got)
	}
}

const feedBody = "Community events\n" +
	"name,date,location,category,attendance,notes\n" +
	"Board games,12 August 2026,Town hall,games,30,Bring snacks\n" +
	"Open mic,13-15 August 2026,\"Cafe, North Square\",music\n" +
	"Mystery meet,sometime,Nowhere\n" +
	"incomplete row,1 August 2026\n"

func TestFetchDecodesFeed(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	f := NewFetcher(Config{URL: srv.URL}, time.UTC)
	events, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (headers and short row dropped): %v", len(events), events)
	}

	if events[0].Name != "Board games" || events[0].Notes != "Bring snacks" {
		t.Fatalf("first event = %+v", events[0])
	}
	if events[1].Location != "Cafe, North Square" {
		t.Fatalf("quoted location = %q", events[1].Location)
	}
	if !events[1].Start.Equal(time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("range start = %v", events[1].Start)
	}
	if !events[2].Start.IsZero() {
		t.Fatalf("unparseable date should leave Start zero, got %v", events[2].Start)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(Config{URL: srv.URL}, time.UTC)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch succeeded, want error")
	}
}

func TestRenderFallsBackToRawDate(t *testing.T) {
	t.Parallel()
	events := []Event{
		{Name: "Board games", Start: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), Location: "Town hall", Notes: "Bring snacks"},
		{Name: "Mystery meet", RawDate: "sometime", Location: "Nowhere"},
	}
	text := Render(events)
	for _, want := range []string{"Board games", "Wednesday 12 August", "Town hall", "Bring snacks", "Mystery meet", "sometime"} {
		if !strings.Contains(text, want) {
			t.Fatalf("Render output missing %q:\n%s", want, text)
		}
	}
}
