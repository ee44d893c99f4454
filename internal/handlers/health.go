package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StoreProbe is the slice of storage the health checks need.
type StoreProbe interface {
	Ping(ctx context.Context) error
	CountSessions(ctx context.Context) (int64, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version   string
	Storage   string
	Messaging string
	store     StoreProbe
	log       *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storage, messaging string, store StoreProbe, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		Version:   version,
		Storage:   storage,
		Messaging: messaging,
		store:     store,
		log:       log,
	}
}

// Info describes the service and its open conversations.
func (h *HealthHandler) Info(c *fiber.Ctx) error {
	response := fiber.Map{
		"service":   "Daaqui Joyas WhatsApp Bot",
		"version":   h.Version,
		"status":    "healthy",
		"storage":   h.Storage,
		"messaging": h.Messaging,
	}
	if n, err := h.store.CountSessions(c.UserContext()); err == nil {
		response["active_sessions"] = n
	} else {
		h.log.Warn("failed to count sessions", zap.Error(err))
	}
	return c.JSON(response)
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"database": false,
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"database": true,
	})
}
