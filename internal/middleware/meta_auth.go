package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ValidateMetaSignature checks X-Hub-Signature-256 against the raw body.
// An empty appSecret disables the check.
func ValidateMetaSignature(appSecret string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if appSecret == "" {
			return c.Next()
		}

		header := c.Get("X-Hub-Signature-256")
		if !strings.HasPrefix(header, "sha256=") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing signature",
			})
		}
		got, err := hex.DecodeString(strings.TrimPrefix(header, "sha256="))
		if err != nil || !hmac.Equal(got, MetaSignature(appSecret, c.Body())) {
			log.Warn("invalid meta signature", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}
		return c.Next()
	}
}

// MetaSignature is the raw HMAC-SHA256 of body keyed with the app secret.
func MetaSignature(appSecret string, body []byte) []byte {
	h := hmac.New(sha256.New, []byte(appSecret))
	h.Write(body)
	return h.Sum(nil)
}
