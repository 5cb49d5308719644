// Package schedule computes the weekly firing instant for the announcer.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FallbackInterval is the wake interval used when the next firing
// instant cannot be computed.
const FallbackInterval = 7 * 24 * time.Hour

type Config struct {
	Weekday  string // e.g. "sunday"; default sunday
	At       string // "HH:MM" wall clock; default "09:00"
	Timezone string // IANA name; default local
}

// Weekly yields the upcoming occurrence of one weekday/time-of-day
// combination, evaluated against a wall clock in a fixed location.
type Weekly struct {
	spec cron.Schedule
	loc  *time.Location
}

// New validates cfg and builds the weekly schedule.
func New(cfg Config) (*Weekly, error) {
	wd, err := parseWeekday(cfg.Weekday)
	if err != nil {
		return nil, err
	}
	hour, minute, err := parseHHMM(cfg.At)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("schedule timezone: %w", err)
		}
	}

	spec, err := cron.ParseStandard(fmt.Sprintf("%d %d * * %d", minute, hour, int(wd)))
	if err != nil {
		return nil, fmt.Errorf("schedule spec: %w", err)
	}
	return &Weekly{spec: spec, loc: loc}, nil
}

var errNoInstant = errors.New("schedule: no next instant")

// Next returns the first firing instant strictly after now.
// Callers must treat an error as non-fatal and fall back to
// now + FallbackInterval.
func (w *Weekly) Next(now time.Time) (time.Time, error) {
	next := w.spec.Next(now.In(w.loc))
	if next.IsZero() || !next.After(now) {
		return time.Time{}, errNoInstant
	}
	return next, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	if wd, ok := days[s]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("schedule weekday %q is not a day name", s)
}

func parseHHMM(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 9, 0, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("schedule time %q is not HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("schedule time %q has a bad hour", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule time %q has a bad minute", s)
	}
	return hour, minute, nil
}
