package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/bot"
	"github.com/daaqui/joyas-bot/internal/logging"
)

// MessageProcessor consumes decoded inbound messages.
type MessageProcessor interface {
	Process(ctx context.Context, msg bot.Message) error
}

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	processor   MessageProcessor
	verifyToken string
	log         *zap.Logger
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(processor MessageProcessor, verifyToken string, log *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		processor:   processor,
		verifyToken: verifyToken,
		log:         log,
	}
}

// Verify answers the Meta subscription handshake.
func (h *WhatsAppHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		h.log.Info("webhook verified")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}
	h.log.Warn("webhook verification failed", zap.String("mode", mode))
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "verification failed"})
}

const (
	metaObjectWhatsApp = "whatsapp_business_account"
	metaFieldMessages  = "messages"
)

// MetaWebhookPayload is the Cloud API notification envelope.
type MetaWebhookPayload struct {
	Object string      `json:"object"`
	Entry  []MetaEntry `json:"entry"`
}

type MetaEntry struct {
	ID      string       `json:"id"`
	Changes []MetaChange `json:"changes"`
}

type MetaChange struct {
	Field string    `json:"field"`
	Value MetaValue `json:"value"`
}

type MetaValue struct {
	MessagingProduct string        `json:"messaging_product"`
	Contacts         []MetaContact `json:"contacts"`
	Messages         []MetaMessage `json:"messages"`
}

type MetaContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type MetaMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
}

// Messages flattens the envelope into provider-independent messages.
// Status-only notifications and other objects or fields yield nothing.
func (p *MetaWebhookPayload) Messages() []bot.Message {
	if p.Object != metaObjectWhatsApp {
		return nil
	}
	var out []bot.Message
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if change.Field != metaFieldMessages {
				continue
			}
			for _, m := range change.Value.Messages {
				msg := bot.Message{
					ID:          m.ID,
					From:        m.From,
					ProfileName: profileName(change.Value.Contacts, m.From),
				}
				switch m.Type {
				case "text":
					msg.Type = bot.TypeText
					if m.Text != nil {
						msg.Text = m.Text.Body
					}
				case "image":
					msg.Type = bot.TypeImage
				default:
					msg.Type = bot.TypeUnsupported
				}
				out = append(out, msg)
			}
		}
	}
	return out
}

func profileName(contacts []MetaContact, waID string) string {
	for _, c := range contacts {
		if c.WaID == waID && c.Profile.Name != "" {
			return c.Profile.Name
		}
	}
	if len(contacts) == 1 && contacts[0].Profile.Name != "" {
		return contacts[0].Profile.Name
	}
	return "Usuario"
}

// HandleWebhook processes Cloud API notifications. Processing errors are
// logged and the delivery is still acknowledged so Meta does not retry.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload MetaWebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		h.log.Warn("invalid webhook payload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook payload"})
	}

	for _, msg := range payload.Messages() {
		h.process(c.UserContext(), msg)
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid        string `form:"MessageSid"`
	AccountSid        string `form:"AccountSid"`
	From              string `form:"From"` // whatsapp:+51987654321
	To                string `form:"To"`
	Body              string `form:"Body"`
	ProfileName       string `form:"ProfileName"`
	NumMedia          string `form:"NumMedia"`
	MediaUrl0         string `form:"MediaUrl0"`
	MediaContentType0 string `form:"MediaContentType0"`
}

// Message converts the form payload. ok is false for status callbacks.
func (p *TwilioWebhookPayload) Message() (bot.Message, bool) {
	if p.From == "" {
		return bot.Message{}, false
	}
	msg := bot.Message{ID: p.MessageSid, From: p.From, ProfileName: p.ProfileName}
	if msg.ProfileName == "" {
		msg.ProfileName = "Usuario"
	}

	media, _ := strconv.Atoi(p.NumMedia)
	switch {
	case media > 0 && strings.HasPrefix(p.MediaContentType0, "image/"):
		msg.Type = bot.TypeImage
	case media > 0:
		msg.Type = bot.TypeUnsupported
	case strings.TrimSpace(p.Body) != "":
		msg.Type = bot.TypeText
		msg.Text = p.Body
	default:
		return bot.Message{}, false
	}
	return msg, true
}

// HandleTwilioWebhook processes messages delivered by Twilio.
func (h *WhatsAppHandler) HandleTwilioWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.log.Warn("invalid twilio payload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook payload"})
	}

	if msg, ok := payload.Message(); ok {
		h.process(c.UserContext(), msg)
	}
	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload feeds a message through the bot without a provider.
type TestWebhookPayload struct {
	From    string `json:"from"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Image   bool   `json:"image"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid test payload"})
	}

	msg := bot.Message{From: payload.From, ProfileName: payload.Name, Type: bot.TypeText, Text: payload.Message}
	if payload.Image {
		msg.Type = bot.TypeImage
	}
	if err := h.processor.Process(c.UserContext(), msg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *WhatsAppHandler) process(ctx context.Context, msg bot.Message) {
	if err := h.processor.Process(ctx, msg); err != nil {
		h.log.Error("failed to process message",
			zap.String("from", logging.MaskPhone(msg.From)),
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
}
