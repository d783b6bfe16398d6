package tracker

import (
	"strings"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
)

// EventType is the semantic meaning of a game-bot message for one command kind.
type EventType int

const (
	// EventSuccess confirms the command just succeeded.
	EventSuccess EventType = iota
	// EventCooldownNotice rejects the command because a cooldown is active.
	EventCooldownNotice
	// EventVoteRegistered is the "you can vote again in ..." acknowledgment.
	// For a second-stage vote this phrasing signals the vote was accepted.
	EventVoteRegistered
	// EventVoteAvailable is the immediate "you can vote right now" reply,
	// meaning no vote was actually pending.
	EventVoteAvailable
)

// rule maps a game-bot phrasing to a semantic event for one command kind.
// A rule matches when every allOf substring is present and at least one anyOf
// substring is present (or the success marker, when markers is set). All
// matching is case-insensitive; the upstream bot answers in more than one
// language, so each event carries several phrasings.
type rule struct {
	kind    domain.Kind
	event   EventType
	allOf   []string
	anyOf   []string
	markers bool // a checkmark reaction or glyph counts as a match
}

// rules is ordered: for a given pending kind the first matching rule wins.
// The rejection phrasings embed the success wording ("you can claim your
// daily reward again" contains "daily reward"), so each kind's cooldown rule
// must precede its success rule.
var rules = []rule{
	{
		kind:  domain.KindDaily,
		event: EventCooldownNotice,
		anyOf: []string{
			"you can claim your daily reward again",
			"puedes reclamar tu recompensa diaria de nuevo",
			"next daily",
			"próximo daily",
			"siguiente daily",
		},
	},
	{
		kind:    domain.KindDaily,
		event:   EventSuccess,
		markers: true,
		anyOf: []string{
			"✅",
			"white_check_mark",
			"daily reward",
			"recompensa diaria",
		},
	},
	{
		kind:  domain.KindDK,
		event: EventCooldownNotice,
		anyOf: []string{
			"you can use $dk again",
			"puedes usar $dk de nuevo",
			"next $dk",
			"próximo $dk",
			"siguiente $dk",
		},
	},
	{
		kind:  domain.KindDK,
		event: EventSuccess,
		allOf: []string{"kakera"},
		anyOf: []string{
			"añadidos a tu colección",
			"añadido a tu colección",
			"agregados a tu colección",
			"added to your collection",
			"added to your list",
			"you received",
			"kakera added",
		},
	},
	{
		kind:  domain.KindVote,
		event: EventVoteRegistered,
		anyOf: []string{
			"you can vote again in",
			"puedes votar nuevamente en",
		},
	},
	{
		kind:  domain.KindVote,
		event: EventVoteAvailable,
		anyOf: []string{
			"you can vote right now!",
			"¡puedes votar en este momento!",
		},
	},
}

func (r rule) matches(lowered string, checkmark bool) bool {
	for _, s := range r.allOf {
		if !strings.Contains(lowered, s) {
			return false
		}
	}
	if r.markers && checkmark {
		return true
	}
	for _, s := range r.anyOf {
		if strings.Contains(lowered, s) {
			return true
		}
	}
	return false
}

// classify returns the semantic event a game-bot message carries for a
// pending command of the given kind. ok is false when no pattern matches.
func classify(kind domain.Kind, content string, checkmark bool) (EventType, bool) {
	lowered := strings.ToLower(content)
	for _, r := range rules {
		if r.kind != kind {
			continue
		}
		if r.matches(lowered, checkmark) {
			return r.event, true
		}
	}
	return 0, false
}
