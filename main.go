package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"

	telegoBot "lingopost-bot/bot"
	"lingopost-bot/internal/auth"
	"lingopost-bot/internal/config"
	"lingopost-bot/internal/database"
	"lingopost-bot/internal/directory"
	"lingopost-bot/internal/fanout"
	"lingopost-bot/internal/handlers"
	"lingopost-bot/internal/locales"
	"lingopost-bot/internal/mediagroups"
	"lingopost-bot/internal/translate"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to Postgres and run migrations
	db, err := database.Connect(cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			log.Printf("Error getting underlying DB handle: %v", dbErr)
			return
		}
		if closeErr := sqlDB.Close(); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
			sentry.CaptureException(closeErr)
		} else {
			log.Println("Disconnected from Postgres.")
		}
	}()

	// Create repository instances
	userRepo := database.NewGormUserRepository(db)
	channelRepo := database.NewGormChannelRepository(db)
	settingRepo := database.NewGormSettingRepository(db)
	statsRepo := database.NewGormStatsRepository(db)

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Bot Initialization ---
	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	adminChecker, err := auth.NewAdminChecker(userRepo, cfg.AdminIDs)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create admin checker: %v", err)
	}

	translator := translate.NewClient(cfg.DeepLAPIKey, "")
	routeDirectory := directory.New(channelRepo, settingRepo)
	mediaGroupMgr := mediagroups.NewManager()
	defer mediaGroupMgr.Shutdown()

	dispatcher := fanout.NewDispatcher(bot, routeDirectory, translator, statsRepo, mediaGroupMgr)

	messageHandler := handlers.NewMessageHandler(
		userRepo,
		channelRepo,
		settingRepo,
		statsRepo,
		adminChecker,
	)

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	appBot, err := telegoBot.New(telegoBot.BotDeps{
		Bot:         bot,
		UpdatesChan: updates,
		Debug:       cfg.Debug,
		Dispatcher:  dispatcher,
		Handler:     messageHandler,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	go appBot.Start(ctx)

	// Wait for context cancellation (e.g., SIGINT, SIGTERM)
	<-ctx.Done()

	log.Println("Shutting down bot...")
	log.Println("Bot shutdown complete.")
}
