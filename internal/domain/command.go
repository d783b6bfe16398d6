package domain

import "strings"

// Kind identifies a tracked game command.
type Kind string

const (
	KindDaily Kind = "daily"
	KindDK    Kind = "dk"
	KindVote  Kind = "vote"
)

// Kinds lists every tracked command in display order.
var Kinds = []Kind{KindDaily, KindDK, KindVote}

// ParseChannelCommand recognizes a command issuance in the watched channel.
// Matching is case-insensitive and exact (no arguments, no prefixes).
func ParseChannelCommand(text string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "$daily":
		return KindDaily, true
	case "$dk":
		return KindDK, true
	case "$vote":
		return KindVote, true
	}
	return "", false
}

// ParseManualCommand recognizes a force-record command issued outside the
// watched channel ("!used daily", "!daily" and the "$" form all count).
func ParseManualCommand(text string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "!used daily", "!daily", "$daily":
		return KindDaily, true
	case "!used dk", "!dk", "$dk":
		return KindDK, true
	case "!used vote", "!vote", "$vote":
		return KindVote, true
	}
	return "", false
}
