package services

import (
	"context"
	"errors"
)

// Messenger delivers outbound WhatsApp messages.
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	SendImage(ctx context.Context, to, imageURL string) error
}

// ErrNotConfigured is returned by senders missing credentials.
var ErrNotConfigured = errors.New("services: messenger not configured")
