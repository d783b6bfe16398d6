package store

import (
	"encoding/json"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Dedup remembers the hour-of-day (0-23) in which each user was last sent
// the periodic reminder, so a user gets at most one per hour even across a
// process restart.
type Dedup struct {
	mu    sync.Mutex
	path  string
	log   *zap.Logger
	hours map[int64]int
}

// OpenDedup loads the dedup file at path; missing or corrupt degrades to empty.
func OpenDedup(path string, log *zap.Logger) *Dedup {
	d := &Dedup{path: path, log: log, hours: make(map[int64]int)}

	raw, err := os.ReadFile(path)
	if err != nil {
		return d
	}
	var file map[string]int
	if err := json.Unmarshal(raw, &file); err != nil {
		log.Warn("dedup file corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return d
	}
	for key, hour := range file {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		d.hours[id] = hour
	}
	log.Info("notification state loaded", zap.Int("users", len(d.hours)))
	return d
}

// NotifiedAt reports whether the user was already notified in the given hour.
func (d *Dedup) NotifiedAt(id int64, hour int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.hours[id]
	return ok && h == hour
}

// MarkNotified records that the user was notified in the given hour and
// rewrites the file.
func (d *Dedup) MarkNotified(id int64, hour int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hours[id] = hour
	d.persistLocked()
}

// PruneStale drops entries whose hour no longer matches the current one.
func (d *Dedup) PruneStale(hour int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, h := range d.hours {
		if h != hour {
			delete(d.hours, id)
		}
	}
}

func (d *Dedup) persistLocked() {
	file := make(map[string]int, len(d.hours))
	for id, hour := range d.hours {
		file[strconv.FormatInt(id, 10)] = hour
	}
	raw, err := json.Marshal(file)
	if err != nil {
		d.log.Error("dedup marshal failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(d.path, raw, 0o644); err != nil {
		d.log.Error("dedup write failed", zap.String("path", d.path), zap.Error(err))
	}
}
