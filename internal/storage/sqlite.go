package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "announcebot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open initializes the configured store. A disabled config yields the
// nop store, not an error.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if !cfg.Enabled {
		return Nop(), nil
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) RecordCycle(ctx context.Context, c Cycle) error {
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles(id, started_at, events, destinations, err) VALUES(?,?,?,?,?)`,
		c.ID, c.StartedAt.Format(time.RFC3339Nano), c.Events, c.Destinations, nullStr(c.Error),
	)
	return err
}

func (s *sqliteStore) RecordDelivery(ctx context.Context, d Delivery) error {
	if d.At.IsZero() {
		d.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries(cycle_id, destination, at, err) VALUES(?,?,?,?)`,
		d.CycleID, d.Destination, d.At.Format(time.RFC3339Nano), nullStr(d.Error),
	)
	return err
}

func (s *sqliteStore) RecentCycles(ctx context.Context, limit int) ([]Cycle, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, events, destinations, COALESCE(err, '')
		 FROM cycles ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var c Cycle
		var started string
		if err := rows.Scan(&c.ID, &started, &c.Events, &c.Destinations, &c.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			c.StartedAt = t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
