package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/logging"
)

// twilioMessageAPI is the slice of the Twilio REST client we use.
type twilioMessageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioService sends WhatsApp messages through Twilio
type TwilioService struct {
	api  twilioMessageAPI
	from string // Twilio WhatsApp sender, "whatsapp:+14155238886"
	log  *zap.Logger
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(accountSID, authToken, from string, log *zap.Logger) (*TwilioService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("twilio: missing credentials: %w", ErrNotConfigured)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioService{api: client.Api, from: whatsappAddress(from), log: log}, nil
}

// SendText sends a WhatsApp text message via Twilio
func (t *TwilioService) SendText(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	return t.create(ctx, to, params)
}

// SendImage sends a media message via Twilio
func (t *TwilioService) SendImage(ctx context.Context, to, imageURL string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetMediaUrl([]string{imageURL})
	return t.create(ctx, to, params)
}

func (t *TwilioService) create(ctx context.Context, to string, params *twilioApi.CreateMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params.SetFrom(t.from)
	params.SetTo(whatsappAddress(to))

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: send to %s: %w", logging.MaskPhone(to), err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	t.log.Debug("twilio message sent", zap.String("sid", sid), zap.String("to", logging.MaskPhone(to)))
	return nil
}

// whatsappAddress formats a number as Twilio expects: "whatsapp:+51987654321".
func whatsappAddress(number string) string {
	number = strings.TrimPrefix(strings.TrimSpace(number), "whatsapp:")
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return "whatsapp:" + number
}
