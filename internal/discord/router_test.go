package discord

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
	"github.com/jorginhocode/discord-mudae-helper/internal/policy"
	"github.com/jorginhocode/discord-mudae-helper/internal/store"
	"github.com/jorginhocode/discord-mudae-helper/internal/tracker"
)

const watchChannel = "1129823274684137602"

// newRouterFixture builds a router over real stores with the given
// allow-list. The session never receives a call on the paths under test, so
// an empty one is enough.
func newRouterFixture(t *testing.T, allowlist string) (*Router, *store.Ledger, *tracker.Tracker) {
	t.Helper()
	dir := t.TempDir()

	allowPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(allowPath, []byte(allowlist), 0o644))
	pol := policy.Load(allowPath, zap.NewNop())

	ledger := store.OpenLedger(filepath.Join(dir, "cooldowns.json"), pol, zap.NewNop())
	track := tracker.New(ledger, 45*time.Second, zap.NewNop())

	session := &discordgo.Session{State: discordgo.NewState()}
	router := NewRouter(session, pol, ledger, track, Options{
		WatchChannelID: watchChannel,
		GameBotID:      "432610292342587392",
		ResetMinute:    3,
		HelpPublic:     true,
	}, zap.NewNop())
	return router, ledger, track
}

func channelMessage(userID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: watchChannel,
		Content:   content,
		Author:    &discordgo.User{ID: userID, Username: "poty", Discriminator: "0001"},
	}}
}

func TestHandleMessage_UnauthorizedChannelCommandLeavesNoTrace(t *testing.T) {
	router, ledger, track := newRouterFixture(t, `{"allowed_users": []}`)

	router.HandleMessage(router.session, channelMessage("777", "$daily"))

	assert.Equal(t, 0, track.Len(), "no pending entry for a disallowed user")
	_, ok := ledger.Get(777)
	assert.False(t, ok, "no ledger record for a disallowed user")
}

func TestHandleMessage_AllowedChannelCommandStartsPendingEntry(t *testing.T) {
	router, ledger, track := newRouterFixture(t, `{"allowed_users": [777]}`)

	router.HandleMessage(router.session, channelMessage("777", "$daily"))

	e, ok := track.PendingFor(777)
	require.True(t, ok)
	assert.Equal(t, domain.KindDaily, e.Kind)

	rec, ok := ledger.Get(777)
	require.True(t, ok)
	assert.Nil(t, rec.LastDaily, "issuance alone must not stamp a success")
}

func TestHandleMessage_BotAuthorsAreIgnored(t *testing.T) {
	router, ledger, track := newRouterFixture(t, `{"allowed_users": [777]}`)

	m := channelMessage("777", "$daily")
	m.Author.Bot = true
	router.HandleMessage(router.session, m)

	assert.Equal(t, 0, track.Len())
	_, ok := ledger.Get(777)
	assert.False(t, ok)
}
