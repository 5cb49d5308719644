package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kelseyhightower/envconfig"

	logx "announcebot/pkg/logx"
)

// envOverrides are applied on top of every parsed file, so secrets can
// stay out of the config file. Prefix: ANNOUNCEBOT_.
type envOverrides struct {
	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`
	FeedURL       string `envconfig:"FEED_URL"`
}

// Manager loads the config file and optionally watches it for changes.
// Only a subset of the config is safe to change at runtime; Watch
// callers decide what to re-apply.
type Manager struct {
	path string

	mu  sync.RWMutex
	cfg *Config

	log logx.Logger
}

func NewManager(path string, log logx.Logger) *Manager {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Manager{path: path, log: log}
}

// Parse reads and strictly decodes the file, then applies env
// overrides. It does not commit.
func (m *Manager) Parse() (*Config, error) {
	b, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	jb, _, err := coerceToJSONBytes(m.path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", m.path, err)
	}
	// Reject trailing tokens (e.g. concatenated JSON).
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("config %s: trailing data", m.path)
		}
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process("announcebot", &env); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}
	if env.TelegramToken != "" {
		cfg.Telegram.Token = env.TelegramToken
	}
	if env.FeedURL != "" {
		cfg.Feed.URL = env.FeedURL
	}

	return &cfg, nil
}

// Load parses, validates and commits the file.
func (m *Manager) Load() (*Config, error) {
	cfg, err := m.Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	return cfg, nil
}

func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Watch re-parses the file on change and hands valid configs to
// onChange. Invalid edits are logged and skipped; the previous config
// stays committed. Watch returns when ctx ends.
func (m *Manager) Watch(ctx context.Context, onChange func(*Config)) {
	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)

	var (
		debounceMu sync.Mutex
		pending    *time.Timer
	)
	reload := func() {
		debounceMu.Lock()
		defer debounceMu.Unlock()
		if pending != nil {
			pending.Stop()
		}
		// Editors produce bursts of events; settle before re-reading.
		pending = time.AfterFunc(250*time.Millisecond, func() {
			cfg, err := m.Load()
			if err != nil {
				m.log.Warn("config reload skipped", logx.Err(err))
				return
			}
			m.log.Info("config reloaded", logx.String("path", m.path))
			onChange(cfg)
		})
	}

	for ctx.Err() == nil {
		w, err := fsnotify.NewWatcher()
		if err == nil {
			err = w.Add(dir)
		}
		if err != nil {
			m.log.Warn("config watch unavailable", logx.Err(err), logx.String("dir", dir))
			if w != nil {
				_ = w.Close()
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
				continue
			}
		}

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return
			case ev, ok := <-w.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(ev.Name), file) {
					reload()
				}
			case err, ok := <-w.Errors:
				if !ok {
					broken = true
					break
				}
				if err != nil {
					m.log.Warn("config watch error", logx.Err(err))
				}
			}
		}
		_ = w.Close()
	}
}
