// Package app assembles the bot: config, logging, storage, transport,
// and the announcer loops.
package app

import (
	"context"
	"sync"
	"time"

	"announcebot/internal/announcer"
	"announcebot/internal/config"
	"announcebot/internal/feed"
	"announcebot/internal/registry"
	"announcebot/internal/schedule"
	"announcebot/internal/storage"
	kit "announcebot/internal/transport"
	"announcebot/internal/transport/telegram"
	logx "announcebot/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	logs *logx.Service
	log  logx.Logger

	adapter *telegram.Adapter
	store   storage.Store
	svc     *announcer.Service
	router  *announcer.Router

	commands chan kit.Command

	runCancel context.CancelFunc
	wg        sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	bootLog := logx.NewConsole("INFO")

	cfgm := config.NewManager(cfgPath, bootLog.With(logx.String("comp", "config")))
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	sched, err := schedule.New(schedule.Config{
		Weekday:  cfg.Schedule.Weekday,
		At:       cfg.Schedule.At,
		Timezone: cfg.Schedule.Timezone,
	})
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if cfg.Schedule.Timezone != "" {
		if l, lerr := time.LoadLocation(cfg.Schedule.Timezone); lerr == nil {
			loc = l
		}
	}

	feedTimeout, err := config.ParseDurationOrDefault("feed.timeout", cfg.Feed.Timeout, 15*time.Second)
	if err != nil {
		return nil, err
	}
	fetcher := feed.NewFetcher(feed.Config{URL: cfg.Feed.URL, Timeout: feedTimeout}, loc)

	store := storage.Nop()
	if cfg.Storage != nil {
		busy, berr := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
		if berr != nil {
			return nil, berr
		}
		store, err = storage.Open(storage.Config{
			Enabled:     cfg.Storage.Enabled,
			Path:        cfg.Storage.Path,
			BusyTimeout: busy,
		}, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
	}

	reg := registry.Load(registry.Config{Path: cfg.Registry.Path}, log.With(logx.String("comp", "registry")))

	svc := announcer.New(announcer.Config{
		DeliveryRatePerSec: cfg.Delivery.RatePerSec,
	}, announcer.Deps{
		Registry: reg,
		Schedule: sched,
		Fetcher:  fetcher,
		Sender:   adapter,
		Store:    store,
		Log:      log.With(logx.String("comp", "announcer")),
	})

	return &App{
		cfgm:     cfgm,
		logs:     logSvc,
		log:      log,
		adapter:  adapter,
		store:    store,
		svc:      svc,
		router:   announcer.NewRouter(svc, adapter, log.With(logx.String("comp", "router"))),
		commands: make(chan kit.Command, 64),
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.runCancel = cancel

	if err := a.adapter.Start(runCtx, a.commands); err != nil {
		cancel()
		return err
	}
	a.svc.Start(runCtx)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.router.Run(runCtx, a.commands)
	}()
	go func() {
		defer a.wg.Done()
		// Hot reload covers the logging section only; everything else
		// needs a restart.
		a.cfgm.Watch(runCtx, func(cfg *config.Config) {
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
		})
	}()

	a.log.Info("started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.runCancel != nil {
		a.runCancel()
	}

	a.svc.Stop(ctx)
	_ = a.adapter.Stop(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	_ = a.store.Close()
	_ = a.logs.Close()
	return nil
}
