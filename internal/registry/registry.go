// Package registry keeps the durable, ordered set of announcement
// destinations.
//
// The backing store is a tabular text file with one destination per row.
// Persistence is best-effort: a failed save is logged, the in-memory
// state keeps the mutation, and at most the latest change is lost on
// crash.
package registry

import (
	"os"
	"slices"

	"announcebot/internal/tabular"
	logx "announcebot/pkg/logx"
)

type Config struct {
	Path string
}

// Registry is not safe for concurrent mutation; the announcer's command
// loop is its only writer.
type Registry struct {
	cfg  Config
	log  logx.Logger
	dest []string
}

// Load builds a Registry from the configured file. A missing or
// unreadable file yields an empty registry, not an error.
func Load(cfg Config, log logx.Logger) *Registry {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Registry{cfg: cfg, log: log}

	doc, err := tabular.LoadFile(cfg.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("registry file unreadable, starting empty", logx.String("path", cfg.Path), logx.Err(err))
		}
		return r
	}
	for _, row := range doc {
		if len(row) == 0 {
			continue
		}
		id := row[0]
		if id == "" || slices.Contains(r.dest, id) {
			continue
		}
		r.dest = append(r.dest, id)
	}
	return r
}

// Destinations returns a copy of the current sequence in insertion
// order. The copy is never nil.
func (r *Registry) Destinations() []string {
	out := make([]string, len(r.dest))
	copy(out, r.dest)
	return out
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	return slices.Contains(r.dest, id)
}

// Add appends id unless already present and persists. It returns the
// resulting full sequence; a non-nil error means the sequence is live
// in memory but could not be written out.
func (r *Registry) Add(id string) ([]string, error) {
	var err error
	if !slices.Contains(r.dest, id) {
		r.dest = append(r.dest, id)
		err = r.save()
	}
	return r.Destinations(), err
}

// Remove deletes id if present and persists, with the same return
// contract as Add.
func (r *Registry) Remove(id string) ([]string, error) {
	var err error
	if i := slices.Index(r.dest, id); i >= 0 {
		r.dest = slices.Delete(r.dest, i, i+1)
		err = r.save()
	}
	return r.Destinations(), err
}

func (r *Registry) save() error {
	doc := make(tabular.Document, 0, len(r.dest))
	for _, id := range r.dest {
		doc = append(doc, []string{id})
	}
	if err := tabular.WriteFile(r.cfg.Path, doc); err != nil {
		r.log.Error("registry save failed", logx.String("path", r.cfg.Path), logx.Err(err))
		return err
	}
	return nil
}
