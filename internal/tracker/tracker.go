package tracker

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
	"github.com/jorginhocode/discord-mudae-helper/internal/store"
)

// Ledger is the slice of the cooldown store the tracker needs.
type Ledger interface {
	RecordSuccess(id int64, kind domain.Kind, displayName string, now time.Time) time.Time
	Get(id int64) (store.Record, bool)
}

// Entry is an in-flight command awaiting the game bot's confirmation.
type Entry struct {
	Kind      domain.Kind
	IssuedAt  time.Time
	Username  string
	VoteStage int // 0 for daily/dk; 1 or 2 for vote
}

// Tracker correlates issued commands with the game bot's asynchronous
// free-text replies. At most one entry exists per user; a new issuance
// overwrites any prior entry and restarts the timer.
type Tracker struct {
	mu      sync.Mutex
	log     *zap.Logger
	ledger  Ledger
	timeout time.Duration
	pending map[int64]*Entry
}

// New creates a Tracker. timeout bounds how long an entry may wait for a
// confirmation before it is silently discarded.
func New(ledger Ledger, timeout time.Duration, log *zap.Logger) *Tracker {
	return &Tracker{
		log:     log,
		ledger:  ledger,
		timeout: timeout,
		pending: make(map[int64]*Entry),
	}
}

// Observe records a command issuance in the watched channel. For $vote a
// second issuance while a fresh stage-1 entry exists advances to stage 2;
// anything else starts over.
func (t *Tracker) Observe(id int64, kind domain.Kind, username string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if kind == domain.KindVote {
		prev, ok := t.pending[id]
		if ok && prev.Kind == domain.KindVote && prev.VoteStage == 1 && now.Sub(prev.IssuedAt) <= t.timeout {
			t.pending[id] = &Entry{Kind: kind, IssuedAt: now, Username: username, VoteStage: 2}
			t.log.Debug("vote advanced to second stage", zap.String("user", username))
			return
		}
		t.pending[id] = &Entry{Kind: kind, IssuedAt: now, Username: username, VoteStage: 1}
		t.log.Debug("vote first stage", zap.String("user", username))
		return
	}

	t.pending[id] = &Entry{Kind: kind, IssuedAt: now, Username: username}
	t.log.Debug("command pending",
		zap.String("kind", string(kind)), zap.String("user", username))
}

// Classify runs one game-bot message against every pending entry. Expired
// entries are discarded first; an unmatched message leaves entries intact
// until their own timeout.
func (t *Tracker) Classify(content string, checkmark bool, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, e := range t.pending {
		if now.Sub(e.IssuedAt) > t.timeout {
			delete(t.pending, id)
			continue
		}

		event, ok := classify(e.Kind, content, checkmark)
		if !ok {
			continue
		}

		switch event {
		case EventSuccess:
			t.ledger.RecordSuccess(id, e.Kind, e.Username, now)
			delete(t.pending, id)

		case EventCooldownNotice:
			t.logRemaining(id, e, now)
			delete(t.pending, id)

		case EventVoteRegistered:
			if e.VoteStage != 2 {
				continue // first-stage prompt, outcome not known yet
			}
			// Guard before write: a still-active vote cooldown means this
			// acknowledgment is stale, not a fresh success.
			if rec, ok := t.ledger.Get(id); ok {
				if label, d := domain.Remaining(rec.LastVote, domain.KindVote, now); label != domain.AvailableLabel {
					t.log.Info("vote already on cooldown, skipping register",
						zap.String("user", e.Username),
						zap.String("remaining", domain.FormatPrecise(d)))
					delete(t.pending, id)
					continue
				}
			}
			t.ledger.RecordSuccess(id, domain.KindVote, e.Username, now)
			delete(t.pending, id)

		case EventVoteAvailable:
			if e.VoteStage != 2 {
				continue
			}
			t.logRemaining(id, e, now)
			delete(t.pending, id)
		}
	}
}

// logRemaining emits the user's current remaining time for diagnostics only.
func (t *Tracker) logRemaining(id int64, e *Entry, now time.Time) {
	rec, ok := t.ledger.Get(id)
	if !ok {
		return
	}
	last := rec.Last(e.Kind)
	if last == nil {
		return
	}
	_, d := domain.Remaining(last, e.Kind, now)
	t.log.Info("command rejected by cooldown",
		zap.String("kind", string(e.Kind)),
		zap.String("user", e.Username),
		zap.String("remaining", domain.FormatPrecise(d)))
}

// PendingFor returns a copy of the user's pending entry, if any.
func (t *Tracker) PendingFor(id int64) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.pending[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len reports the number of in-flight entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
