// Package feed ingests the remote event table and prepares the weekly
// announcement payload.
package feed

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Event is one row of the remote feed. Start is the zero time when the
// raw date could not be normalized; such events never match a window.
type Event struct {
	Name       string
	RawDate    string
	Location   string
	Category   string
	Attendance string
	Notes      string

	Start time.Time
}

// Upstream slack past one week, so a trigger firing slightly early still
// catches events on the boundary day.
const windowSlack = 15 * time.Hour

// Window is the forward-looking announcement window starting at now.
const Window = 7*24*time.Hour + windowSlack

// Date parse failure modes. Rows hitting any of these are excluded from
// windowed output, never reported as errors.
var (
	ErrDateTokens = errors.New("feed: date needs day, month and year tokens")
	ErrDateDay    = errors.New("feed: day is not a number")
	ErrDateMonth  = errors.New("feed: unknown month name")
	ErrDateYear   = errors.New("feed: year is not a number")
)

var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// ParseDate normalizes free-form feed dates of the shape
// "12 August 2026" or "12-14 August 2026" (a range keeps its start day)
// to midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	tokens := strings.Split(strings.TrimSpace(raw), " ")
	if len(tokens) != 3 {
		return time.Time{}, ErrDateTokens
	}

	dayToken, _, _ := strings.Cut(tokens[0], "-")
	day, err := strconv.Atoi(dayToken)
	if err != nil {
		return time.Time{}, ErrDateDay
	}

	month, ok := months[strings.ToLower(tokens[1])]
	if !ok {
		return time.Time{}, ErrDateMonth
	}

	year, err := strconv.Atoi(tokens[2])
	if err != nil {
		return time.Time{}, ErrDateYear
	}

	return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
}

// InWindow reports whether e starts within [now, now+Window).
// Events with no normalized start never qualify.
func (e Event) InWindow(now time.Time) bool {
	if e.Start.IsZero() {
		return false
	}
	return !e.Start.Before(now) && e.Start.Before(now.Add(Window))
}

// Filter returns the events starting within the window anchored at now,
// preserving feed order.
func Filter(events []Event, now time.Time) []Event {
	var out []Event
	for _, e := range events {
		if e.InWindow(now) {
			out = append(out, e)
		}
	}
	return out
}
