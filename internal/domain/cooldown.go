package domain

import (
	"fmt"
	"time"
)

// Cooldown windows are fixed per command kind.
const (
	DailyWindow = 20 * time.Hour
	DKWindow    = 20 * time.Hour
	VoteWindow  = 12 * time.Hour
)

// AvailableLabel is returned when a command can be used right away.
const AvailableLabel = "Available"

// Window returns the cooldown window for a command kind.
func Window(k Kind) time.Duration {
	if k == KindVote {
		return VoteWindow
	}
	return DailyWindow
}

// Remaining computes how long until a command becomes available again.
// last is the last confirmed success (nil means never used). The returned
// label is "Available" or "{h}h {m}m" with the hour term omitted when zero.
func Remaining(last *time.Time, k Kind, now time.Time) (string, time.Duration) {
	if last == nil {
		return AvailableLabel, 0
	}
	next := last.UTC().Add(Window(k))
	if !now.Before(next) {
		return AvailableLabel, 0
	}
	d := next.Sub(now)
	return formatCoarse(d), d
}

// NextReset computes the time until the next hourly reset anchor, i.e. the
// next instant whose minute-of-hour equals minute (":03" by default).
func NextReset(now time.Time, minute int) (string, time.Duration) {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, time.UTC)
	if now.Minute() > minute || (now.Minute() == minute && now.Second() > 0) {
		next = next.Add(time.Hour)
	}
	d := next.Sub(now)
	return formatCoarse(d), d
}

// formatCoarse renders a duration as "{h}h {m}m", or just "{m}m" under an hour.
func formatCoarse(d time.Duration) string {
	totalMinutes := int(d.Minutes())
	if totalMinutes >= 60 {
		return fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
	}
	return fmt.Sprintf("%dm", totalMinutes)
}

// FormatPrecise renders a remaining duration with seconds precision for the
// interactive status reply. Leading zero terms are dropped but seconds always
// appear; non-positive durations render as "Available".
func FormatPrecise(d time.Duration) string {
	if d <= 0 {
		return AvailableLabel
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	out := ""
	if h > 0 {
		out += fmt.Sprintf("%dh ", h)
	}
	if m > 0 || h > 0 {
		out += fmt.Sprintf("%dm ", m)
	}
	return out + fmt.Sprintf("%ds", s)
}
