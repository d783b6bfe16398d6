package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jorginhocode/discord-mudae-helper/internal/scheduler"
)

// Blurple, the color the upstream bot's own cards use.
const embedColor = 0x5865F2

func footerText(now time.Time) string {
	return "by @potyhx  •  " + now.Format("Today at 15:04")
}

// reminderEmbed renders the hourly consolidated announcement. At the reset
// tick the shared roll is available right now, hence the fixed "NOW!".
func reminderEmbed(r scheduler.Reminder, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Mudae Helper: Announcements",
		Description: fmt.Sprintf("Account: **%s**", r.Account),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Main Commands",
				Value: fmt.Sprintf(
					">>> **$wa:** **NOW!**\n**$daily:** %s\n**$dk:** %s\n**$vote:** %s\n**Next $wa:** %s",
					r.Daily, r.DK, r.Vote, r.NextReset,
				),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footerText(now)},
	}
}

// statusEmbed renders the on-demand cooldown report with seconds precision.
func statusEmbed(account, nextReset, daily, dk, vote string, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Mudae Helper: Cooldowns",
		Description: fmt.Sprintf("Account: **%s**", account),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Next Commands",
				Value: fmt.Sprintf(
					">>> **$wa:** %s\n**$daily:** %s\n**$dk:** %s\n**$vote:** %s",
					nextReset, daily, dk, vote,
				),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footerText(now)},
	}
}

const rejectNoticeText = "You are not on the authorized user list for this bot."

func manualConfirmation(kind, window string) string {
	return fmt.Sprintf("$%s registered successfully\nNext available in %s hours", kind, window)
}

func helpText(watchChannelID string) string {
	return fmt.Sprintf(`✅ **AUTHORIZED USERS ONLY** ✅
This bot only works for pre-configured users in the allow-list file

MAIN FEATURES:
NOTIFICATIONS AT MINUTE 03! - Every hour at :03 UTC
AUTOMATIC DETECTION in channel <#%s>
20 HOURS for $daily and $dk
12 HOURS for $vote

AVAILABLE COMMANDS (for authorized users only):
• !status - Shows detailed remaining times
• !used daily - Force register $daily
• !used dk - Force register $dk
• !used vote - Force register $vote (12h cooldown)
• !help - Show this help

NORMAL FLOW:
1. Every hour at :03 UTC you receive a DM with all times
2. Send $wa, $daily, $dk, $vote in <#%s>
3. The bot automatically detects your commands
4. Use !status anytime to see exact times

YOUR ACCOUNT IS AUTOMATICALLY REGISTERED:
• Only your pre-authorized accounts are tracked
• Your data is stored by your unique User ID (never changes)
• Unauthorized users (including other bots) are completely ignored`,
		watchChannelID, watchChannelID)
}
