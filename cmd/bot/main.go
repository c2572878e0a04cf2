package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/user/ghrelay/internal/config"
	"github.com/user/ghrelay/internal/github"
	"github.com/user/ghrelay/internal/notifier"
	"github.com/user/ghrelay/internal/ratelimit"
	"github.com/user/ghrelay/internal/storage"
	"github.com/user/ghrelay/internal/telegram"
	"github.com/user/ghrelay/pkg/logger"
)

const serviceName = "ghrelay"

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Init("info", "")
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logger.Info().Msg("Starting GitHub relay bot")
	if len(cfg.Telegram.AllowedChatIDs) == 0 {
		logger.Warn().Msg("No allowed chat IDs configured, bot is open to everyone")
	}
	if cfg.GitHub.WebhookSecret == "" {
		logger.Warn().Msg("No webhook secret configured, signature verification is disabled")
	}

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	store := storage.NewWatchStore(db)
	logger.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	ghClient := github.NewClient(cfg.GitHub.Token)

	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	limiter := ratelimit.New(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	bot.SetHandlers(telegram.NewHandlers(cfg, limiter, store, ghClient, bot))

	// Webhook events are formatted in the HTTP handler and delivered off the
	// request path through this channel.
	eventsCh := make(chan *github.Notification, 100)

	notify := notifier.New(bot, store, cfg.Telegram.AllowedChatIDs, eventsCh)
	notify.Start()

	r := chi.NewRouter()
	if cfg.Telegram.Debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", github.HealthHandler(serviceName))
	r.Post("/webhook", github.NewWebhookHandler(cfg.GitHub.WebhookSecret, cfg.Notify, eventsCh).ServeHTTP)

	server := &http.Server{
		Addr:    cfg.ServerAddress(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("address", cfg.ServerAddress()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	bot.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	bot.Stop()

	// Drain pending notifications before exiting.
	close(eventsCh)
	notify.Stop()

	logger.Info().Msg("Shutdown complete")
}
