package discord

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
	"github.com/jorginhocode/discord-mudae-helper/internal/policy"
	"github.com/jorginhocode/discord-mudae-helper/internal/scheduler"
	"github.com/jorginhocode/discord-mudae-helper/internal/store"
	"github.com/jorginhocode/discord-mudae-helper/internal/tracker"
)

// Options carries the router's policy knobs and channel wiring.
type Options struct {
	WatchChannelID string
	GameBotID      string
	ResetMinute    int
	HelpPublic     bool // whether !help answers unauthorized users
	RejectNotice   bool // answer unauthorized users with a notice instead of silence
}

// Router dispatches Discord messages to the tracker, the classifier and the
// manual-command handlers.
type Router struct {
	session *discordgo.Session
	log     *zap.Logger
	pol     *policy.Policy
	ledger  *store.Ledger
	track   *tracker.Tracker
	opts    Options
}

// NewRouter wires the message surface together.
func NewRouter(session *discordgo.Session, pol *policy.Policy, ledger *store.Ledger, track *tracker.Tracker, opts Options, log *zap.Logger) *Router {
	return &Router{
		session: session,
		log:     log,
		pol:     pol,
		ledger:  ledger,
		track:   track,
		opts:    opts,
	}
}

// HandleMessage is registered as the discordgo MessageCreate handler.
func (r *Router) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	// The game bot's replies feed the classifier; every other bot is noise.
	if m.Author.ID == r.opts.GameBotID {
		r.track.Classify(m.Content, hasCheckmark(m.Message), time.Now().UTC())
		return
	}
	if m.Author.Bot {
		return
	}

	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}
	allowed := r.pol.IsAllowed(userID)

	if m.ChannelID == r.opts.WatchChannelID {
		r.handleWatchedChannel(userID, allowed, m)
	}
	r.handleManual(userID, allowed, m)
}

// handleWatchedChannel records command issuances for allowed users.
func (r *Router) handleWatchedChannel(userID int64, allowed bool, m *discordgo.MessageCreate) {
	kind, ok := domain.ParseChannelCommand(m.Content)
	if !ok || !allowed {
		return
	}
	name := displayName(m.Author)
	r.ledger.Ensure(userID, name)
	r.track.Observe(userID, kind, name, time.Now().UTC())
}

// hasCheckmark reports whether the message carries the success marker, either
// as a reaction or as a glyph in the text.
func hasCheckmark(m *discordgo.Message) bool {
	for _, reaction := range m.Reactions {
		if reaction.Emoji != nil && reaction.Emoji.Name == "✅" && reaction.Count > 0 {
			return true
		}
	}
	return strings.Contains(m.Content, "✅")
}

// displayName prefers the global name, falling back to the legacy
// username#discriminator form.
func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName + " (" + u.Username + ")"
	}
	return u.Username + "#" + u.Discriminator
}

// reject answers an unauthorized user according to policy: a fixed notice or
// nothing at all.
func (r *Router) reject(channelID string) {
	if !r.opts.RejectNotice {
		return
	}
	if _, err := r.session.ChannelMessageSend(channelID, rejectNoticeText); err != nil {
		r.log.Warn("reject notice delivery failed", zap.Error(err))
	}
}

// SendReminder delivers the hourly consolidated embed via DM, satisfying
// scheduler.Sender.
func (r *Router) SendReminder(rem scheduler.Reminder) error {
	ch, err := r.session.UserChannelCreate(strconv.FormatInt(rem.UserID, 10))
	if err != nil {
		return err
	}
	_, err = r.session.ChannelMessageSendEmbed(ch.ID, reminderEmbed(rem, time.Now()))
	return err
}

// ResolveDisplayName fetches a user's current identity, satisfying
// scheduler.Resolver. A 404 from the API means the account is gone.
func (r *Router) ResolveDisplayName(id int64) (string, error) {
	u, err := r.session.User(strconv.FormatInt(id, 10))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return "", scheduler.ErrUnknownUser
		}
		return "", err
	}
	return displayName(u), nil
}
