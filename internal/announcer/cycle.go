package announcer

import (
	"context"

	"github.com/google/uuid"

	"announcebot/internal/feed"
	"announcebot/internal/storage"
	logx "announcebot/pkg/logx"
)

// RunCycle performs one full ingestion+delivery pass: fetch the feed,
// filter to the upcoming window, render, and send to every destination
// in the current snapshot. Failures never propagate; the next scheduled
// cycle is the retry.
func (s *Service) RunCycle(ctx context.Context) {
	started := s.now()
	cycleID := uuid.NewString()
	dests := s.Snapshot()
	log := s.log.With(logx.String("cycle", cycleID))

	events, err := s.fetcher.Fetch(ctx)
	if err != nil {
		log.Error("feed fetch failed, skipping cycle", logx.Err(err))
		s.recordCycle(ctx, storage.Cycle{ID: cycleID, StartedAt: started, Error: err.Error()})
		return
	}

	upcoming := feed.Filter(events, started)
	if len(upcoming) == 0 {
		log.Info("no events in window, nothing to announce", logx.Int("fetched", len(events)))
		s.recordCycle(ctx, storage.Cycle{ID: cycleID, StartedAt: started})
		return
	}

	payload := feed.Render(upcoming)
	log.Info("announcing", logx.Int("events", len(upcoming)), logx.Int("destinations", len(dests)))
	s.recordCycle(ctx, storage.Cycle{
		ID:           cycleID,
		StartedAt:    started,
		Events:       len(upcoming),
		Destinations: len(dests),
	})

	for _, dest := range dests {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		d := storage.Delivery{CycleID: cycleID, Destination: dest, At: s.now()}
		if err := s.sender.SendText(ctx, dest, payload); err != nil {
			// Isolated: one refusing destination never blocks the rest.
			log.Error("delivery failed", logx.String("dest", dest), logx.Err(err))
			d.Error = err.Error()
		}
		s.recordDelivery(ctx, d)
	}
}

func (s *Service) recordCycle(ctx context.Context, c storage.Cycle) {
	if err := s.store.RecordCycle(ctx, c); err != nil {
		s.log.Warn("cycle history write failed", logx.Err(err))
	}
}

func (s *Service) recordDelivery(ctx context.Context, d storage.Delivery) {
	if err := s.store.RecordDelivery(ctx, d); err != nil {
		s.log.Warn("delivery history write failed", logx.Err(err))
	}
}
