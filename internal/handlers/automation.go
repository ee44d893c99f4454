package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/bot"
)

// ShippingNotifier sends the shipped-order message sequence.
type ShippingNotifier interface {
	SendShippingNotification(ctx context.Context, n bot.ShippingNotice) (int, error)
}

// AutomationHandler serves endpoints called by back-office automations.
type AutomationHandler struct {
	notifier ShippingNotifier
	log      *zap.Logger
}

func NewAutomationHandler(notifier ShippingNotifier, log *zap.Logger) *AutomationHandler {
	return &AutomationHandler{notifier: notifier, log: log}
}

// ShippingNotification handles POST /api/automation/shipping-notification.
func (h *AutomationHandler) ShippingNotification(c *fiber.Ctx) error {
	var notice bot.ShippingNotice
	if err := c.BodyParser(&notice); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := notice.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "phone and tracking_code are required"})
	}

	sent, err := h.notifier.SendShippingNotification(c.UserContext(), notice)
	if err != nil {
		h.log.Error("shipping notification failed", zap.Int("messages_sent", sent), zap.Error(err))
		status := fiber.StatusBadGateway
		if errors.Is(err, bot.ErrInvalidShippingNotice) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"success":       false,
			"messages_sent": sent,
			"error":         "failed to send shipping notification",
		})
	}

	return c.JSON(fiber.Map{"success": true, "messages_sent": sent})
}
