package announcer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"announcebot/internal/registry"
	"announcebot/internal/schedule"
	"announcebot/internal/storage"
	logx "announcebot/pkg/logx"
)

// Deps are the collaborators the announcer coordinates. Store may be
// nil (treated as disabled); everything else is required.
type Deps struct {
	Registry *registry.Registry
	Schedule Nexter
	Fetcher  Fetcher
	Sender   Sender
	Store    storage.Store
	Log      logx.Logger
}

type Service struct {
	cfg Config
	log logx.Logger

	reg     *registry.Registry
	sched   Nexter
	fetcher Fetcher
	sender  Sender
	store   storage.Store

	queue   *commandQueue
	limiter *rate.Limiter
	now     func() time.Time

	mu       sync.Mutex
	snapshot []string

	runMu     sync.Mutex
	runCancel context.CancelFunc
	wg        sync.WaitGroup
}

func New(cfg Config, deps Deps) *Service {
	log := deps.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	store := deps.Store
	if store == nil {
		store = storage.Nop()
	}
	rps := cfg.DeliveryRatePerSec
	if rps <= 0 {
		rps = 10
	}
	return &Service{
		cfg:      cfg,
		log:      log,
		reg:      deps.Registry,
		sched:    deps.Schedule,
		fetcher:  deps.Fetcher,
		sender:   deps.Sender,
		store:    store,
		queue:    newCommandQueue(),
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		now:      time.Now,
		snapshot: deps.Registry.Destinations(),
	}
}

// Enqueue hands a command to the command loop without blocking.
// It reports false once the service has been stopped.
func (s *Service) Enqueue(c Command) bool {
	return s.queue.Push(c)
}

// Snapshot returns the latest committed destination sequence.
func (s *Service) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Start launches the command loop and the scheduler loop.
func (s *Service) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.runCancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.commandLoop()
	}()
	go func() {
		defer s.wg.Done()
		s.schedulerLoop(runCtx)
	}()

	s.log.Info("announcer started", logx.Int("destinations", len(s.Snapshot())))
}

// Stop closes the command source, cancels the scheduler sleep and waits
// for both loops (bounded by ctx).
func (s *Service) Stop(ctx context.Context) {
	s.runMu.Lock()
	cancel := s.runCancel
	s.runCancel = nil
	s.runMu.Unlock()
	if cancel == nil {
		return
	}

	s.queue.Close()
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("announcer stop timed out")
	}
}

// commandLoop drains the queue until it is closed. It is the only
// writer of the registry and of the shared snapshot.
func (s *Service) commandLoop() {
	for {
		cmd, ok := s.queue.Pop()
		if !ok {
			s.log.Info("command source closed, command loop exiting")
			return
		}
		s.apply(cmd)
	}
}

func (s *Service) apply(cmd Command) {
	var (
		seq []string
		err error
	)
	switch cmd.Kind {
	case Register:
		seq, err = s.reg.Add(cmd.Dest)
	case Unregister:
		seq, err = s.reg.Remove(cmd.Dest)
	default:
		s.log.Warn("unknown command kind", logx.Int("kind", int(cmd.Kind)))
		return
	}

	// The in-memory mutation stands even when the save failed; the next
	// successful mutation rewrites the whole file anyway.
	if err != nil {
		s.log.Error("registry persist failed", logx.String("dest", cmd.Dest), logx.Err(err))
	}

	s.mu.Lock()
	s.snapshot = seq
	s.mu.Unlock()

	if cmd.Reply != nil {
		ack := seq
		if err != nil {
			ack = nil
		}
		select {
		case cmd.Reply <- ack:
		default:
		}
	}
}

// schedulerLoop sleeps until the next weekly firing instant, runs one
// delivery cycle and repeats until shutdown.
func (s *Service) schedulerLoop(ctx context.Context) {
	for {
		now := s.now()
		wake := s.nextWake(now)

		timer := time.NewTimer(wake.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.RunCycle(ctx)
	}
}

// nextWake never fails: a schedule computation error degrades to a flat
// seven-day cadence.
func (s *Service) nextWake(now time.Time) time.Time {
	next, err := s.sched.Next(now)
	if err != nil {
		s.log.Warn("next firing instant unavailable, using fallback interval", logx.Err(err))
		return now.Add(schedule.FallbackInterval)
	}
	s.log.Info("next announcement scheduled", logx.Time("at", next))
	return next
}
