// Package bot routes decoded webhook messages to the admin command channel
// or the sales dialogue.
package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/dialogue"
	"github.com/daaqui/joyas-bot/internal/logging"
	"github.com/daaqui/joyas-bot/internal/services"
	"github.com/daaqui/joyas-bot/internal/storage"
	"github.com/daaqui/joyas-bot/internal/utils"
)

// Message types after channel decoding.
const (
	TypeText        = "text"
	TypeImage       = "image"
	TypeUnsupported = "unsupported"
)

// Message is one inbound WhatsApp message, independent of the provider.
type Message struct {
	ID          string
	From        string
	ProfileName string
	Type        string
	Text        string
}

// Deduplicator filters replayed deliveries.
type Deduplicator interface {
	FirstDelivery(ctx context.Context, id string) bool
}

// Handler is the dialogue entry point.
type Handler interface {
	Handle(ctx context.Context, in dialogue.Inbound) error
}

// Processor handles inbound messages one customer at a time.
type Processor struct {
	dialogue    Handler
	store       storage.Store
	messenger   services.Messenger
	dedup       Deduplicator // optional
	rules       *config.BusinessRules
	adminNumber string
	locks       *keyedMutex
	log         *zap.Logger
}

// NewProcessor wires a processor. dedup may be nil.
func NewProcessor(
	handler Handler,
	store storage.Store,
	messenger services.Messenger,
	dedup Deduplicator,
	rules *config.BusinessRules,
	adminNumber string,
	log *zap.Logger,
) *Processor {
	return &Processor{
		dialogue:    handler,
		store:       store,
		messenger:   messenger,
		dedup:       dedup,
		rules:       rules,
		adminNumber: utils.NormalizePhone(adminNumber),
		locks:       newKeyedMutex(),
		log:         log,
	}
}

// Process handles one message. Errors are logged by the caller; the
// webhook still acknowledges the delivery.
func (p *Processor) Process(ctx context.Context, msg Message) error {
	from := utils.NormalizePhone(msg.From)
	if from == "" {
		return nil
	}
	if p.dedup != nil && !p.dedup.FirstDelivery(ctx, msg.ID) {
		p.log.Info("duplicate delivery dropped", zap.String("message_id", msg.ID))
		return nil
	}

	unlock := p.locks.Lock(from)
	defer unlock()

	log := p.log.With(zap.String("from", logging.MaskPhone(from)), zap.String("type", msg.Type))

	in := dialogue.Inbound{Phone: from, UserName: msg.ProfileName}
	switch msg.Type {
	case TypeText:
		in.Text = msg.Text
	case TypeImage:
		in.Receipt = true
	default:
		log.Info("unsupported message type")
		p.send(ctx, from, dialogue.MsgUnsupportedType)
		return nil
	}

	log.Info("processing message", zap.String("profile", msg.ProfileName))

	if p.isAdmin(from) && !in.Receipt {
		if cmd, ok := parseAdminCommand(in.Text); ok {
			return p.runAdminCommand(ctx, cmd)
		}
	}

	return p.dialogue.Handle(ctx, in)
}

func (p *Processor) isAdmin(from string) bool {
	return p.adminNumber != "" && from == p.adminNumber
}

func (p *Processor) send(ctx context.Context, to, body string) {
	if err := p.messenger.SendText(ctx, to, body); err != nil {
		p.log.Error("failed to send text", zap.String("to", logging.MaskPhone(to)), zap.Error(err))
	}
}
