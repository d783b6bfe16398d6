package discord

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
)

// handleManual routes the "!" commands, which work from any channel or DM.
func (r *Router) handleManual(userID int64, allowed bool, m *discordgo.MessageCreate) {
	content := strings.ToLower(strings.TrimSpace(m.Content))

	switch content {
	case "!status":
		if !allowed {
			r.reject(m.ChannelID)
			return
		}
		r.handleStatus(userID, m)
		return

	case "!help", "!ayuda":
		if !r.opts.HelpPublic && !allowed {
			r.reject(m.ChannelID)
			return
		}
		if _, err := r.session.ChannelMessageSend(m.ChannelID, helpText(r.opts.WatchChannelID)); err != nil {
			r.log.Warn("help delivery failed", zap.Error(err))
		}
		return
	}

	if kind, ok := domain.ParseManualCommand(content); ok {
		if !allowed {
			r.reject(m.ChannelID)
			return
		}
		// Inside the watched channel the "$" forms are real issuances, not
		// force-records; the tracker already saw them.
		if m.ChannelID == r.opts.WatchChannelID {
			return
		}
		r.handleForceRecord(userID, kind, m)
	}
}

// handleStatus is the synchronous remaining-time report.
func (r *Router) handleStatus(userID int64, m *discordgo.MessageCreate) {
	name := displayName(m.Author)
	r.ledger.Ensure(userID, name)
	rec, ok := r.ledger.Get(userID)
	if !ok {
		// Only possible when persistence raced a prune; treat as empty.
		return
	}

	now := time.Now().UTC()
	_, daily := domain.Remaining(rec.LastDaily, domain.KindDaily, now)
	_, dk := domain.Remaining(rec.LastDK, domain.KindDK, now)
	_, vote := domain.Remaining(rec.LastVote, domain.KindVote, now)
	nextReset, _ := domain.NextReset(now, r.opts.ResetMinute)

	embed := statusEmbed(
		name,
		nextReset,
		domain.FormatPrecise(daily),
		domain.FormatPrecise(dk),
		domain.FormatPrecise(vote),
		time.Now(),
	)
	if _, err := r.session.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		r.log.Warn("status delivery failed", zap.String("user", name), zap.Error(err))
		return
	}
	r.log.Info("status requested", zap.String("user", name))
}

// handleForceRecord registers a success manually, for runs the watcher missed.
func (r *Router) handleForceRecord(userID int64, kind domain.Kind, m *discordgo.MessageCreate) {
	name := displayName(m.Author)
	stamp := r.ledger.RecordSuccess(userID, kind, name, time.Now().UTC())
	if stamp.IsZero() {
		return
	}

	window := "20"
	if kind == domain.KindVote {
		window = "12"
	}
	if _, err := r.session.ChannelMessageSend(m.ChannelID, manualConfirmation(string(kind), window)); err != nil {
		r.log.Warn("confirmation delivery failed", zap.String("user", name), zap.Error(err))
	}
}
