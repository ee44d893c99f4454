package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/storage"
	"github.com/daaqui/joyas-bot/internal/utils"
)

// SalesReader is the read side the back office needs.
type SalesReader interface {
	GetPendingSalesByCustomer(ctx context.Context, customerID string) ([]*models.Sale, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
}

// AdminHandler handles admin operations
type AdminHandler struct {
	store SalesReader
	log   *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store SalesReader, log *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, log: log}
}

// GetPendingSales lists a customer's sales still waiting for the pickup key,
// so shipping can be prepared before the notification goes out.
func (h *AdminHandler) GetPendingSales(c *fiber.Ctx) error {
	phone := utils.NormalizePhone(c.Query("phone"))
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "phone is required"})
	}

	sales, err := h.store.GetPendingSalesByCustomer(c.UserContext(), phone)
	if err != nil {
		h.log.Error("failed to fetch pending sales", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch pending sales",
		})
	}

	var owed float64
	for _, s := range sales {
		owed += s.Balance
	}

	response := fiber.Map{
		"success": true,
		"sales":   sales,
		"count":   len(sales),
		"balance": owed,
	}
	customer, err := h.store.GetCustomer(c.UserContext(), phone)
	switch {
	case err == nil:
		response["customer"] = customer
	case !errors.Is(err, storage.ErrNotFound):
		h.log.Warn("failed to fetch customer", zap.Error(err))
	}
	return c.JSON(response)
}
