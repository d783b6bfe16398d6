package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	DiscordToken   string        `envconfig:"DISCORD_TOKEN" required:"true"`
	WatchChannelID string        `envconfig:"WATCH_CHANNEL_ID" required:"true"`  // channel where game commands are auto-detected
	GameBotID      string        `envconfig:"GAME_BOT_ID" default:"432610292342587392"` // the game bot whose replies are classified
	AllowlistPath  string        `envconfig:"ALLOWLIST_PATH" default:"./data/config.json"`
	LedgerPath     string        `envconfig:"LEDGER_PATH" default:"./data/cooldowns.json"`
	DedupPath      string        `envconfig:"DEDUP_PATH" default:"./data/notified_users.json"`
	ResetMinute    int           `envconfig:"RESET_MINUTE" default:"3"`   // minute-of-hour the game resets the shared roll
	PendingTimeout time.Duration `envconfig:"PENDING_TIMEOUT" default:"45s"`
	HelpPublic     bool          `envconfig:"HELP_PUBLIC" default:"true"` // whether !help answers unauthorized users
	RejectNotice   bool          `envconfig:"REJECT_NOTICE" default:"false"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"` // healthz
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
