package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/z89kdf9k4p-code/crewbot/internal/config"
	"github.com/z89kdf9k4p-code/crewbot/internal/kb"
	"github.com/z89kdf9k4p-code/crewbot/internal/scheduler"
	"github.com/z89kdf9k4p-code/crewbot/internal/store"
	"github.com/z89kdf9k4p-code/crewbot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	store   *store.Store
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting crewbot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("tz", a.cfg.Timezone),
		zap.Int("admins", len(a.cfg.AdminIDs)),
	)

	// Open SQLite, run migrations and load the cache mirror. Any failure
	// here is fatal: a half-initialized store must not serve traffic.
	st, err := store.Open(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	a.store = st
	a.log.Info("store ready")

	search := kb.NewIndex(st)
	a.router = telegram.NewRouter(a.bot, a.log, st, search, a.cfg.AdminIDs)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(st, a.log, a.router, a.cfg.Location(), a.cfg.DigestHour, a.cfg.DigestMinute)
	go sched.Run(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.store != nil {
				_ = a.store.Close()
			}
			return nil

		case upd := <-updCh:
			// One update at a time: per-user events keep arrival order.
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
