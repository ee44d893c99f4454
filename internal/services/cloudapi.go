package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/logging"
)

const defaultGraphBaseURL = "https://graph.facebook.com"

// CloudAPIClient sends messages through the WhatsApp Business Cloud API.
type CloudAPIClient struct {
	baseURL       string
	version       string
	phoneNumberID string
	token         string
	httpClient    *http.Client
	log           *zap.Logger
}

// CloudAPIOption customizes a CloudAPIClient.
type CloudAPIOption func(*CloudAPIClient)

// WithBaseURL points the client at another Graph API host, used in tests.
func WithBaseURL(url string) CloudAPIOption {
	return func(c *CloudAPIClient) { c.baseURL = url }
}

// WithHTTPClient replaces the default 15s-timeout client.
func WithHTTPClient(hc *http.Client) CloudAPIOption {
	return func(c *CloudAPIClient) { c.httpClient = hc }
}

// NewCloudAPIClient creates a client for the given phone number id.
func NewCloudAPIClient(token, phoneNumberID, version string, log *zap.Logger, opts ...CloudAPIOption) *CloudAPIClient {
	c := &CloudAPIClient{
		baseURL:       defaultGraphBaseURL,
		version:       version,
		phoneNumberID: phoneNumberID,
		token:         token,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		log:           log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cloudTextBody struct {
	Body string `json:"body"`
}

type cloudImage struct {
	Link string `json:"link"`
}

type cloudMessage struct {
	MessagingProduct string         `json:"messaging_product"`
	To               string         `json:"to"`
	Type             string         `json:"type"`
	Text             *cloudTextBody `json:"text,omitempty"`
	Image            *cloudImage    `json:"image,omitempty"`
}

// SendText sends a plain text message.
func (c *CloudAPIClient) SendText(ctx context.Context, to, body string) error {
	return c.send(ctx, cloudMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &cloudTextBody{Body: body},
	})
}

// SendImage sends an image by public URL.
func (c *CloudAPIClient) SendImage(ctx context.Context, to, imageURL string) error {
	return c.send(ctx, cloudMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "image",
		Image:            &cloudImage{Link: imageURL},
	})
}

func (c *CloudAPIClient) send(ctx context.Context, msg cloudMessage) error {
	if c.token == "" || c.phoneNumberID == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("cloudapi: encode message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.version, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("cloudapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloudapi: send %s: %w", msg.Type, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cloudapi: send %s: status %d: %s", msg.Type, resp.StatusCode, body)
	}

	c.log.Debug("message sent",
		zap.String("to", logging.MaskPhone(msg.To)),
		zap.String("type", msg.Type))
	return nil
}
