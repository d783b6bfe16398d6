package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/config"
	"github.com/jorginhocode/discord-mudae-helper/internal/discord"
	"github.com/jorginhocode/discord-mudae-helper/internal/policy"
	"github.com/jorginhocode/discord-mudae-helper/internal/scheduler"
	"github.com/jorginhocode/discord-mudae-helper/internal/store"
	"github.com/jorginhocode/discord-mudae-helper/internal/tracker"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	session *discordgo.Session
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, session: session, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting mudae-helper",
		zap.String("watch_channel", a.cfg.WatchChannelID),
		zap.Int("reset_minute", a.cfg.ResetMinute),
		zap.String("http", a.cfg.HTTPAddr),
	)

	pol := policy.Load(a.cfg.AllowlistPath, a.log)
	ledger := store.OpenLedger(a.cfg.LedgerPath, pol, a.log)
	logLoadedCooldowns(ledger, a.log)
	dedup := store.OpenDedup(a.cfg.DedupPath, a.log)
	track := tracker.New(ledger, a.cfg.PendingTimeout, a.log)

	router := discord.NewRouter(a.session, pol, ledger, track, discord.Options{
		WatchChannelID: a.cfg.WatchChannelID,
		GameBotID:      a.cfg.GameBotID,
		ResetMinute:    a.cfg.ResetMinute,
		HelpPublic:     a.cfg.HelpPublic,
		RejectNotice:   a.cfg.RejectNotice,
	}, a.log)
	a.session.AddHandler(router.HandleMessage)
	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.log.Info("gateway ready",
			zap.String("account", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
	})

	if err := a.session.Open(); err != nil {
		a.log.Error("discord connect failed", zap.Error(err))
		return err
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	sched := scheduler.New(ledger, dedup, pol, router, router, a.cfg.ResetMinute, a.log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	// Stop accepting events, then let in-flight work drain.
	<-schedDone
	if err := a.session.Close(); err != nil {
		a.log.Warn("discord close error", zap.Error(err))
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	return nil
}

// logLoadedCooldowns reports each tracked user's persisted state at startup.
func logLoadedCooldowns(ledger *store.Ledger, log *zap.Logger) {
	for _, id := range ledger.UserIDs() {
		rec, ok := ledger.Get(id)
		if !ok {
			continue
		}
		log.Info("tracked user loaded",
			zap.Int64("user_id", id),
			zap.String("account", rec.UserAccount),
			zap.String("last_daily", stampOrNever(rec.LastDaily)),
			zap.String("last_dk", stampOrNever(rec.LastDK)),
			zap.String("last_vote", stampOrNever(rec.LastVote)),
		)
	}
}

func stampOrNever(t *time.Time) string {
	if t == nil {
		return "never used"
	}
	return t.UTC().Format(time.RFC3339)
}
