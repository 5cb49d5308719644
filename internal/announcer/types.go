// Package announcer runs the two long-lived loops of the bot: the
// command loop, which owns all registry mutation, and the scheduler
// loop, which wakes weekly to fetch, filter and deliver the event
// announcement.
//
// The loops share exactly one piece of state, the latest registry
// snapshot, behind a mutex. Everything else each loop owns outright.
package announcer

import (
	"context"
	"time"

	"announcebot/internal/feed"
)

type CommandKind int

const (
	Register CommandKind = iota
	Unregister
)

// Command is one registry mutation request.
type Command struct {
	Kind CommandKind
	Dest string

	// Reply, when non-nil, receives the resulting full destination
	// sequence after the command is applied (nil when it could not be
	// persisted). It must be buffered; the command loop never blocks
	// on it.
	Reply chan<- []string
}

type Config struct {
	// DeliveryRatePerSec bounds payload sends across destinations.
	DeliveryRatePerSec int
}

// Fetcher yields the current feed events. *feed.Fetcher satisfies it;
// tests substitute their own.
type Fetcher interface {
	Fetch(ctx context.Context) ([]feed.Event, error)
}

// Sender delivers one payload to one destination.
type Sender interface {
	SendText(ctx context.Context, to string, text string) error
}

// Nexter computes the next firing instant strictly after now.
// *schedule.Weekly satisfies it.
type Nexter interface {
	Next(now time.Time) (time.Time, error)
}
