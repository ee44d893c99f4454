package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/daaqui/joyas-bot/internal/bot"
	"github.com/daaqui/joyas-bot/internal/catalog"
	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/dedup"
	"github.com/daaqui/joyas-bot/internal/dialogue"
	"github.com/daaqui/joyas-bot/internal/handlers"
	"github.com/daaqui/joyas-bot/internal/jobs"
	"github.com/daaqui/joyas-bot/internal/orders"
	"github.com/daaqui/joyas-bot/internal/routes"
	"github.com/daaqui/joyas-bot/internal/services"
	"github.com/daaqui/joyas-bot/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer closeDB(db, log)
	}

	messenger, err := newMessenger(cfg, log)
	if err != nil {
		return err
	}

	var sheet services.OrderSheet
	if cfg.GoogleSheetID != "" {
		s, err := services.NewSheetsService(ctx, cfg.GoogleCredentialsJSON, cfg.GoogleSheetID, cfg.GoogleSheetRange, log)
		if err != nil {
			log.Warn("google sheets disabled", zap.Error(err))
		} else {
			sheet = s
		}
	}

	notifier := newAdminNotifier(cfg, messenger, log)
	finalizer := orders.NewFinalizer(store, sheet, notifier, log)
	engine := dialogue.NewEngine(store, catalog.New(store, rules.ProductKeywords), finalizer, messenger, rules, log,
		dialogue.Options{Delay: cfg.MessageDelay})

	dd, err := dedup.New(ctx, store, cfg.DedupTTL, log)
	if err != nil {
		return err
	}
	defer func() { _ = dd.Close() }()

	processor := bot.NewProcessor(engine, store, messenger, dd, rules, cfg.AdminWhatsAppNumber, log)

	job := jobs.NewMaintenanceJob(store, cfg.SessionTTL, cfg.DedupTTL, log)
	if err := job.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		job.Stop(stopCtx)
	}()

	storageName := cfg.DatabaseDriver
	if db == nil {
		storageName = "memory"
	}
	app := newApp(cfg, log, routes.Handlers{
		WhatsApp:   handlers.NewWhatsAppHandler(processor, cfg.WhatsAppVerifyToken, log),
		Automation: handlers.NewAutomationHandler(processor, log),
		Admin:      handlers.NewAdminHandler(store, log),
		Health:     handlers.NewHealthHandler(Version, storageName, cfg.MessagingProvider, store, log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info("server started",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("storage", storageName),
		zap.String("messaging", cfg.MessagingProvider),
		zap.Bool("sheets", sheet != nil),
		zap.Int("admin_channels", notifier.Len()))

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}
	return nil
}

func newApp(cfg *config.Config, log *zap.Logger, h routes.Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Daaqui Joyas Bot " + Version,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	routes.SetupRoutes(app, cfg, h, log)
	return app
}

// openStore returns the memory store or a migrated database store. db is nil
// for the memory store.
func openStore(cfg *config.Config, log *zap.Logger) (storage.Store, *gorm.DB, error) {
	if cfg.UseMemoryStore {
		log.Warn("using in-memory storage, data is lost on restart")
		return storage.NewMemoryStore(), nil, nil
	}
	db, err := openMigrated(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewDatabaseStore(db), db, nil
}

func newMessenger(cfg *config.Config, log *zap.Logger) (services.Messenger, error) {
	switch cfg.MessagingProvider {
	case "twilio":
		t, err := services.NewTwilioService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, log)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		if cfg.WhatsAppToken == "" || cfg.WhatsAppPhoneNumberID == "" {
			return nil, fmt.Errorf("cloud api: WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID are required: %w", services.ErrNotConfigured)
		}
		return services.NewCloudAPIClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneNumberID, cfg.GraphAPIVersion, log), nil
	}
}

// newAdminNotifier fans sale summaries out to every configured channel.
func newAdminNotifier(cfg *config.Config, messenger services.Messenger, log *zap.Logger) *services.FanOut {
	var channels []services.Notifier
	if cfg.AdminWhatsAppNumber != "" {
		channels = append(channels, services.NewWhatsAppNotifier(messenger, cfg.AdminWhatsAppNumber))
	}
	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		channels = append(channels, services.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannelID))
	}
	if cfg.DiscordBotToken != "" && cfg.DiscordChannelID != "" {
		d, err := services.NewDiscordNotifier(cfg.DiscordBotToken, cfg.DiscordChannelID)
		if err != nil {
			log.Warn("discord notifications disabled", zap.Error(err))
		} else {
			channels = append(channels, d)
		}
	}
	return services.NewFanOut(log, channels...)
}
