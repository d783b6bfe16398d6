package store

import (
	"time"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
)

// Record is one user's cooldown state. Timestamps are UTC instants of the
// last confirmed success, nil when the command was never used.
type Record struct {
	UserAccount string
	LastDaily   *time.Time
	LastDK      *time.Time
	LastVote    *time.Time
}

// Last returns the last-success timestamp for a command kind.
func (r *Record) Last(k domain.Kind) *time.Time {
	switch k {
	case domain.KindDaily:
		return r.LastDaily
	case domain.KindDK:
		return r.LastDK
	case domain.KindVote:
		return r.LastVote
	}
	return nil
}

func (r *Record) setLast(k domain.Kind, t time.Time) {
	t = t.UTC()
	switch k {
	case domain.KindDaily:
		r.LastDaily = &t
	case domain.KindDK:
		r.LastDK = &t
	case domain.KindVote:
		r.LastVote = &t
	}
}

// recordJSON is the on-disk shape: timestamps as absent-or-ISO-8601 strings.
type recordJSON struct {
	UserAccount string  `json:"user_account"`
	LastDaily   *string `json:"last_daily"`
	LastDK      *string `json:"last_dk"`
	LastVote    *string `json:"last_vote"`
}

func toTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// fromTimestamp parses an ISO-8601 timestamp. A timestamp without explicit
// offset information is interpreted as UTC, never local time.
func fromTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999", // naive, assume UTC
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, *s, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func (r *Record) toJSON() recordJSON {
	return recordJSON{
		UserAccount: r.UserAccount,
		LastDaily:   toTimestamp(r.LastDaily),
		LastDK:      toTimestamp(r.LastDK),
		LastVote:    toTimestamp(r.LastVote),
	}
}

func (j recordJSON) toRecord() *Record {
	return &Record{
		UserAccount: j.UserAccount,
		LastDaily:   fromTimestamp(j.LastDaily),
		LastDK:      fromTimestamp(j.LastDK),
		LastVote:    fromTimestamp(j.LastVote),
	}
}
