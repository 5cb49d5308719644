package announcer

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"announcebot/internal/feed"
	"announcebot/internal/registry"
	"announcebot/internal/schedule"
	kit "announcebot/internal/transport"
	logx "announcebot/pkg/logx"
)

type fakeSender struct {
	mu    sync.Mutex
	sends []string // destination ids in send order
	fail  map[string]error
}

func (f *fakeSender) SendText(_ context.Context, to string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, to)
	if f.fail != nil {
		return f.fail[to]
	}
	return nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sends))
	copy(out, f.sends)
	return out
}

type fakeFetcher struct {
	events []feed.Event
	err    error
}

func (f *fakeFetcher) Fetch(context.Context) ([]feed.Event, error) { return f.events, f.err }

type fixedNexter struct{ at time.Time }

func (n fixedNexter) Next(time.Time) (time.Time, error) { return n.at, nil }

type failingNexter struct{}

func (failingNexter) Next(time.Time) (time.Time, error) {
	return time.Time{}, errors.New("calendar arithmetic failed")
}

func newTestService(t *testing.T, fetcher Fetcher, sender Sender) *Service {
	t.Helper()
	reg := registry.Load(registry.Config{Path: filepath.Join(t.TempDir(), "channels.txt")}, logx.Nop())
	return New(Config{}, Deps{
		Registry: reg,
		Schedule: fixedNexter{at: time.Now().Add(time.Hour)},
		Fetcher:  fetcher,
		Sender:   sender,
		Log:      logx.Nop(),
	})
}

func applySync(t *testing.T, s *Service, kind CommandKind, dest string) []string {
	t.Helper()
	reply := make(chan []string, 1)
	if !s.Enqueue(Command{Kind: kind, Dest: dest, Reply: reply}) {
		t.Fatal("Enqueue refused, queue closed")
	}
	select {
	case seq := <-reply:
		return seq
	case <-time.After(2 * time.Second):
		t.Fatal("command loop did not acknowledge")
		return nil
	}
}

func TestRegisterAnnounceUnregister(t *testing.T) {
	t.Parallel()
	now := time.Now()
	fetcher := &fakeFetcher{events: []feed.Event{
		{Name: "Meetup", Start: now.Add(24 * time.Hour), Location: "Hall"},
		{Name: "Too far", Start: now.Add(9 * 24 * time.Hour), Location: "Hall"},
	}}
	sender := &fakeSender{}
	s := newTestService(t, fetcher, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	if seq := applySync(t, s, Register, "chan-1"); !reflect.DeepEqual(seq, []string{"chan-1"}) {
		t.Fatalf("register ack = %v", seq)
	}

	s.RunCycle(ctx)
	if got := sender.sent(); !reflect.DeepEqual(got, []string{"chan-1"}) {
		t.Fatalf("deliveries = %v, want exactly one to chan-1", got)
	}

	if seq := applySync(t, s, Unregister, "chan-1"); len(seq) != 0 {
		t.Fatalf("unregister ack = %v, want empty", seq)
	}

	s.RunCycle(ctx)
	if got := sender.sent(); len(got) != 1 {
		t.Fatalf("deliveries after unregister = %v, want no new sends", got)
	}
}

func TestCycleSkippedOnFetchError(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}
	s := newTestService(t, &fakeFetcher{err: errors.New("feed down")}, sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	applySync(t, s, Register, "chan-1")
	s.RunCycle(ctx)
	if got := sender.sent(); len(got) != 0 {
		t.Fatalf("deliveries = %v, want none on fetch error", got)
	}
}

func TestDeliveryFailureIsIsolated(t *testing.T) {
	t.Parallel()
	now := time.Now()
	fetcher := &fakeFetcher{events: []feed.Event{{Name: "Meetup", Start: now.Add(time.Hour), Location: "Hall"}}}
	sender := &fakeSender{fail: map[string]error{"chan-2": errors.New("blocked")}}
	s := newTestService(t, fetcher, sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	applySync(t, s, Register, "chan-1")
	applySync(t, s, Register, "chan-2")
	applySync(t, s, Register, "chan-3")

	s.RunCycle(ctx)
	want := []string{"chan-1", "chan-2", "chan-3"}
	if got := sender.sent(); !reflect.DeepEqual(got, want) {
		t.Fatalf("deliveries = %v, want all three attempted", got)
	}
}

func TestNextWakeFallback(t *testing.T) {
	t.Parallel()
	s := newTestService(t, &fakeFetcher{}, &fakeSender{})
	s.sched = failingNexter{}

	now := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	wake := s.nextWake(now)
	if want := now.Add(schedule.FallbackInterval); !wake.Equal(want) {
		t.Fatalf("nextWake = %v, want fallback %v", wake, want)
	}
}

func TestQueueUnboundedNonBlockingPush(t *testing.T) {
	t.Parallel()
	q := newCommandQueue()
	for i := 0; i < 10000; i++ {
		if !q.Push(Command{Kind: Register, Dest: "chan"}) {
			t.Fatal("Push refused on open queue")
		}
	}
	q.Close()
	var n int
	for {
		if _, ok := q.Pop(); !ok {
			break
		}
		n++
	}
	if n != 10000 {
		t.Fatalf("drained %d items, want 10000", n)
	}
	if q.Push(Command{}) {
		t.Fatal("Push succeeded on closed queue")
	}
}

func TestRouterAnnounceToggles(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}
	s := newTestService(t, &fakeFetcher{}, sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	r := NewRouter(s, sender, logx.Nop())

	r.handle(ctx, kit.Command{Chat: "42", Text: "/announce@somebot"})
	if got := s.Snapshot(); !reflect.DeepEqual(got, []string{"42"}) {
		t.Fatalf("snapshot after toggle on = %v", got)
	}

	r.handle(ctx, kit.Command{Chat: "42", Text: "/announce"})
	if got := s.Snapshot(); len(got) != 0 {
		t.Fatalf("snapshot after toggle off = %v", got)
	}

	r.handle(ctx, kit.Command{Chat: "42", Text: "/weather"})
	if got := s.Snapshot(); len(got) != 0 {
		t.Fatalf("snapshot after unknown command = %v", got)
	}

	// Two acknowledgements were sent back to the chat.
	if got := sender.sent(); !reflect.DeepEqual(got, []string{"42", "42"}) {
		t.Fatalf("acks = %v", got)
	}
}
