package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	twilioclient "github.com/twilio/twilio-go/client"
	"go.uber.org/zap"
)

// ValidateTwilioSignature validates that the webhook request is from Twilio.
// publicURL overrides the URL Twilio signed when the server sits behind a
// proxy; empty means rebuild it from the request.
func ValidateTwilioSignature(authToken, publicURL string, log *zap.Logger) fiber.Handler {
	validator := twilioclient.NewRequestValidator(authToken)

	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Twilio-Signature")
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}
		if authToken == "" {
			log.Error("TWILIO_AUTH_TOKEN not set, rejecting webhook")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		params := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			params[string(key)] = string(value)
		})

		if !validator.Validate(fullURL(c, publicURL), params, signature) {
			log.Warn("invalid twilio signature", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}
		return c.Next()
	}
}

func fullURL(c *fiber.Ctx, publicURL string) string {
	if publicURL != "" {
		return publicURL + c.OriginalURL()
	}
	return fmt.Sprintf("%s://%s%s", c.Protocol(), c.Hostname(), c.OriginalURL())
}
