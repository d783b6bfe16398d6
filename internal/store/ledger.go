package store

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
)

// Gate is the minimal access check the ledger needs. policy.Policy satisfies it.
type Gate interface {
	IsAllowed(id int64) bool
}

// Ledger is the durable per-user record of last-success timestamps. All
// mutations are serialized by a mutex and rewrite the whole file; in-memory
// state stays authoritative when a write fails.
type Ledger struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
	gate Gate
	recs map[string]*Record // key: user-id string
}

// OpenLedger loads the ledger file at path. A missing or corrupt file
// degrades to an empty ledger; the process keeps running.
func OpenLedger(path string, gate Gate, log *zap.Logger) *Ledger {
	l := &Ledger{
		path: path,
		log:  log,
		gate: gate,
		recs: make(map[string]*Record),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("ledger not readable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return l
	}

	var file map[string]recordJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		log.Warn("ledger corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return l
	}
	for id, rec := range file {
		l.recs[id] = rec.toRecord()
	}
	log.Info("ledger loaded", zap.Int("users", len(l.recs)))
	return l
}

// RecordSuccess stamps the last-success time for a command and persists the
// ledger synchronously. It is a no-op for users outside the access policy.
// The returned time is the stamped UTC instant (zero when not allowed).
func (l *Ledger) RecordSuccess(id int64, k domain.Kind, displayName string, now time.Time) time.Time {
	if !l.gate.IsAllowed(id) {
		return time.Time{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.ensureLocked(id, displayName)
	if displayName != "" {
		rec.UserAccount = displayName
	}
	stamp := now.UTC()
	rec.setLast(k, stamp)
	l.persistLocked()

	l.log.Info("command registered",
		zap.String("kind", string(k)),
		zap.String("user", rec.UserAccount))
	return stamp
}

// Ensure creates a record for an allowed user if absent, persisting when a
// record was created. Reports whether the record existed before the call.
func (l *Ledger) Ensure(id int64, displayName string) bool {
	if !l.gate.IsAllowed(id) {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := strconv.FormatInt(id, 10)
	if _, ok := l.recs[key]; ok {
		return true
	}
	l.ensureLocked(id, displayName)
	l.persistLocked()
	return false
}

// Get returns a copy of a user's record.
func (l *Ledger) Get(id int64) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.recs[strconv.FormatInt(id, 10)]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// SetAccount refreshes the cached display name and persists.
func (l *Ledger) SetAccount(id int64, displayName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.recs[strconv.FormatInt(id, 10)]
	if !ok || displayName == "" {
		return
	}
	rec.UserAccount = displayName
	l.persistLocked()
}

// Prune removes a user whose identity can no longer be resolved.
func (l *Ledger) Prune(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := strconv.FormatInt(id, 10)
	if _, ok := l.recs[key]; !ok {
		return
	}
	delete(l.recs, key)
	l.persistLocked()
	l.log.Info("ledger record pruned", zap.Int64("user_id", id))
}

// UserIDs returns the tracked user IDs in ascending order.
func (l *Ledger) UserIDs() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int64, 0, len(l.recs))
	for key := range l.recs {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (l *Ledger) ensureLocked(id int64, displayName string) *Record {
	key := strconv.FormatInt(id, 10)
	rec, ok := l.recs[key]
	if !ok {
		if displayName == "" {
			displayName = "user_" + key
		}
		rec = &Record{UserAccount: displayName}
		l.recs[key] = rec
	}
	return rec
}

// persistLocked rewrites the whole ledger file. A failed write is logged
// loudly; the in-memory state remains authoritative until the next attempt.
func (l *Ledger) persistLocked() {
	file := make(map[string]recordJSON, len(l.recs))
	for id, rec := range l.recs {
		file[id] = rec.toJSON()
	}
	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		l.log.Error("ledger marshal failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(l.path, raw, 0o644); err != nil {
		l.log.Error("ledger write failed, in-memory state kept",
			zap.String("path", l.path), zap.Error(err))
	}
}
