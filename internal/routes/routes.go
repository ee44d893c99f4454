package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/handlers"
	"github.com/daaqui/joyas-bot/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	WhatsApp   *handlers.WhatsAppHandler
	Automation *handlers.AutomationHandler
	Admin      *handlers.AdminHandler
	Health     *handlers.HealthHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers, log *zap.Logger) {
	app.Get("/", h.Health.Info)
	app.Get("/health", h.Health.Check)

	api := app.Group("/api")

	// Cloud API webhook
	api.Get("/webhook", h.WhatsApp.Verify)
	api.Post("/webhook", middleware.ValidateMetaSignature(cfg.WhatsAppAppSecret, log), h.WhatsApp.HandleWebhook)

	automation := api.Group("/automation", middleware.RequireBearerToken(cfg.AutomationToken))
	automation.Post("/shipping-notification", h.Automation.ShippingNotification)
	automation.Get("/pending-sales", h.Admin.GetPendingSales)

	// Twilio webhook, validated unless running locally behind a tunnel
	webhooks := app.Group("/webhook")
	if cfg.IsDevelopment() || cfg.DisableWebhookAuth {
		log.Warn("twilio webhook validation disabled")
		webhooks.Post("/twilio", h.WhatsApp.HandleTwilioWebhook)
	} else {
		webhooks.Post("/twilio", middleware.ValidateTwilioSignature(cfg.TwilioAuthToken, cfg.PublicBaseURL, log), h.WhatsApp.HandleTwilioWebhook)
	}

	if cfg.IsDevelopment() {
		app.Post("/test/whatsapp", h.WhatsApp.HandleTestWebhook)
	}
}
