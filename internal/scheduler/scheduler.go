package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
	"github.com/jorginhocode/discord-mudae-helper/internal/store"
)

// ErrUnknownUser marks a permanently unresolvable identity; the scheduler
// prunes such users from the ledger.
var ErrUnknownUser = errors.New("unknown user")

// Reminder carries the consolidated remaining-time data for one user.
type Reminder struct {
	UserID    int64
	Account   string
	Daily     string
	DK        string
	Vote      string
	NextReset string
}

// Sender delivers one reminder. The Discord router implements this.
type Sender interface {
	SendReminder(r Reminder) error
}

// Resolver resolves a user's current display identity, returning
// ErrUnknownUser when the account no longer exists.
type Resolver interface {
	ResolveDisplayName(id int64) (string, error)
}

// Gate is the access check; policy.Policy satisfies it.
type Gate interface {
	IsAllowed(id int64) bool
}

// Scheduler fires once per hour at a fixed minute offset and pushes one
// consolidated reminder to every tracked user, deduplicated per hour.
type Scheduler struct {
	ledger      *store.Ledger
	dedup       *store.Dedup
	gate        Gate
	resolver    Resolver
	sender      Sender
	log         *zap.Logger
	resetMinute int
	interval    time.Duration
}

// New creates a Scheduler. resetMinute is the minute-of-hour anchor (":03"
// by default), matching the watched game's hourly reset.
func New(ledger *store.Ledger, dedup *store.Dedup, gate Gate, resolver Resolver, sender Sender, resetMinute int, log *zap.Logger) *Scheduler {
	return &Scheduler{
		ledger:      ledger,
		dedup:       dedup,
		gate:        gate,
		resolver:    resolver,
		sender:      sender,
		log:         log,
		resetMinute: resetMinute,
		interval:    30 * time.Second,
	}
}

// Run starts the timer loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			now := time.Now().UTC()
			if now.Minute() != s.resetMinute {
				continue
			}
			s.Tick(ctx, now)
		}
	}
}

// Tick performs one notification cycle. It is a function of the injected
// clock so tests can drive it with synthetic times.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	now = now.UTC()
	hour := now.Hour()
	s.dedup.PruneStale(hour)

	for _, id := range s.ledger.UserIDs() {
		if ctx.Err() != nil {
			return
		}
		if !s.gate.IsAllowed(id) {
			continue
		}
		if s.dedup.NotifiedAt(id, hour) {
			continue
		}

		rec, ok := s.ledger.Get(id)
		if !ok {
			continue
		}

		account := rec.UserAccount
		switch name, err := s.resolver.ResolveDisplayName(id); {
		case errors.Is(err, ErrUnknownUser):
			s.log.Warn("user unresolvable, pruning record", zap.Int64("user_id", id))
			s.ledger.Prune(id)
			continue
		case err != nil:
			// Transient resolution failure: fall back to the cached name.
			s.log.Warn("identity refresh failed", zap.Int64("user_id", id), zap.Error(err))
		case name != "" && name != account:
			account = name
			s.ledger.SetAccount(id, name)
		}

		daily, _ := domain.Remaining(rec.LastDaily, domain.KindDaily, now)
		dk, _ := domain.Remaining(rec.LastDK, domain.KindDK, now)
		vote, _ := domain.Remaining(rec.LastVote, domain.KindVote, now)
		// Anchor the next-reset label one minute ahead: at the :03 tick the
		// current reset is happening right now.
		nextReset, _ := domain.NextReset(now.Add(time.Minute), s.resetMinute)

		r := Reminder{
			UserID:    id,
			Account:   account,
			Daily:     daily,
			DK:        dk,
			Vote:      vote,
			NextReset: nextReset,
		}
		if err := s.sender.SendReminder(r); err != nil {
			s.log.Error("reminder delivery failed",
				zap.Int64("user_id", id), zap.String("account", account), zap.Error(err))
			continue
		}

		s.log.Info("reminder sent", zap.String("account", account))
		s.dedup.MarkNotified(id, hour)
	}
}
