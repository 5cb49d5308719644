// Package storage keeps an optional history of announcement cycles and
// per-destination delivery outcomes.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage. If Enabled is false the nop store is used.
type Config struct {
	Enabled     bool
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// Cycle records one scheduler wake-up. Error is empty on success.
type Cycle struct {
	ID           string
	StartedAt    time.Time
	Events       int
	Destinations int
	Error        string
}

// Delivery records one send attempt within a cycle.
type Delivery struct {
	CycleID     string
	Destination string
	At          time.Time
	Error       string
}

// Store is the persistence API used by the announcer.
type Store interface {
	RecordCycle(ctx context.Context, c Cycle) error
	RecordDelivery(ctx context.Context, d Delivery) error
	RecentCycles(ctx context.Context, limit int) ([]Cycle, error)
	Close() error
}

// Nop returns a Store that records nothing.
func Nop() Store { return nopStore{} }

type nopStore struct{}

func (nopStore) RecordCycle(context.Context, Cycle) error       { return nil }
func (nopStore) RecordDelivery(context.Context, Delivery) error { return nil }
func (nopStore) RecentCycles(context.Context, int) ([]Cycle, error) {
	return nil, ErrDisabled
}
func (nopStore) Close() error { return nil }
