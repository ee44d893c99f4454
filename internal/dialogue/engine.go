// Package dialogue runs the scripted sales conversation.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/catalog"
	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/logging"
	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/services"
	"github.com/daaqui/joyas-bot/internal/storage"
)

// OrderFinalizer records a paid order.
type OrderFinalizer interface {
	Finalize(ctx context.Context, session *models.Session) (*models.Sale, error)
}

// Inbound is one customer message after channel decoding.
type Inbound struct {
	Phone    string
	UserName string
	Text     string
	// Receipt is set by the channel for image messages, the proof of payment.
	Receipt bool
}

// Options tunes timing; zero values are valid.
type Options struct {
	// Delay paces consecutive messages, as after an image.
	Delay time.Duration
	Now   func() time.Time
}

// Engine advances conversations one message at a time. Callers must not
// run two Handle calls for the same phone concurrently.
type Engine struct {
	store      storage.Store
	catalog    *catalog.Catalog
	finalizer  OrderFinalizer
	messenger  services.Messenger
	rules      *config.BusinessRules
	classifier *Classifier
	districts  *DistrictResolver
	faq        *FAQ
	log        *zap.Logger
	delay      time.Duration
	now        func() time.Time
}

// NewEngine wires an engine.
func NewEngine(
	store storage.Store,
	cat *catalog.Catalog,
	finalizer OrderFinalizer,
	messenger services.Messenger,
	rules *config.BusinessRules,
	log *zap.Logger,
	opts Options,
) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:      store,
		catalog:    cat,
		finalizer:  finalizer,
		messenger:  messenger,
		rules:      rules,
		classifier: NewClassifier(rules.CancellationWords),
		districts:  NewDistrictResolver(rules),
		faq:        NewFAQ(rules.FAQ),
		log:        log,
		delay:      opts.Delay,
		now:        now,
	}
}

// Handle processes one inbound message.
func (e *Engine) Handle(ctx context.Context, in Inbound) error {
	if in.UserName == "" {
		in.UserName = "Usuario"
	}

	if e.classifier.IsCancellation(in.Text) {
		return e.cancel(ctx, in.Phone)
	}

	session, err := e.store.GetSession(ctx, in.Phone)
	if errors.Is(err, storage.ErrNotFound) {
		return e.start(ctx, in)
	}
	if err != nil {
		return fmt.Errorf("dialogue: load session: %w", err)
	}
	return e.continueFlow(ctx, in, session)
}

func (e *Engine) cancel(ctx context.Context, phone string) error {
	session, err := e.store.GetSession(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dialogue: load session: %w", err)
	}
	if _, err := next(ctx, session.State, EventCancel); err != nil {
		e.log.Warn("cancelling session in unknown state", zap.String("state", session.State))
	}
	if err := e.store.DeleteSession(ctx, phone); err != nil {
		return fmt.Errorf("dialogue: cancel: %w", err)
	}
	e.send(ctx, phone, MsgCancelled)
	return nil
}

// start handles a message from someone without a session.
func (e *Engine) start(ctx context.Context, in Inbound) error {
	product, err := e.catalog.Lookup(ctx, in.Text)
	switch {
	case err == nil:
		return e.pitch(ctx, in, product)
	case errors.Is(err, catalog.ErrNoMatch):
	default:
		return fmt.Errorf("dialogue: lookup product: %w", err)
	}

	if answer, ok := e.faq.Answer(in.Text, nil); ok {
		e.send(ctx, in.Phone, answer)
		return nil
	}
	e.send(ctx, in.Phone, welcomeMessage(in.UserName, e.rules))
	return nil
}

func (e *Engine) pitch(ctx context.Context, in Inbound, product *models.Product) error {
	if product.ImageMain != "" {
		e.sendImage(ctx, in.Phone, product.ImageMain)
		e.pause(ctx)
	}
	e.send(ctx, in.Phone, pitchMessage(in.UserName, product))

	session := &models.Session{
		PhoneNumber:  in.Phone,
		State:        StateOccasionResponse,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.BasePrice,
		UserName:     in.UserName,
		IsUpsell:     false,
		OrderKey:     uuid.NewString(),
	}
	return e.save(ctx, session)
}

func (e *Engine) continueFlow(ctx context.Context, in Inbound, session *models.Session) error {
	state := session.State

	if !in.Receipt && !capturesFreeText(state) {
		if answer, ok := e.faq.Answer(in.Text, session); ok {
			e.send(ctx, in.Phone, answer)
			if question, ok := LastQuestion(state); ok {
				e.pause(ctx)
				e.send(ctx, in.Phone, msgFAQContinue+question)
			}
			return nil
		}
	}

	if !in.Receipt && allowsProductRestart(state) && e.catalog.Matches(in.Text) {
		if err := e.store.DeleteSession(ctx, in.Phone); err != nil {
			return fmt.Errorf("dialogue: restart: %w", err)
		}
		if session.UserName != "" {
			in.UserName = session.UserName
		}
		return e.start(ctx, in)
	}

	product, err := e.catalog.Get(ctx, session.ProductID)
	if errors.Is(err, storage.ErrNotFound) {
		e.send(ctx, in.Phone, MsgProductUnavailable)
		return e.delete(ctx, in.Phone)
	}
	if err != nil {
		return fmt.Errorf("dialogue: load product: %w", err)
	}

	exp, known := expectations[state]
	if !known {
		e.send(ctx, in.Phone, MsgConfused)
		return nil
	}
	intent := Receipt
	if !in.Receipt {
		intent = e.classifier.Classify(in.Text, exp)
	}

	// an image outside the payment states answers nothing; repeat the question
	if intent == Receipt && exp != ExpectReceipt && state != StateOccasionResponse {
		if question, ok := LastQuestion(state); ok {
			e.send(ctx, in.Phone, question)
		}
		return nil
	}

	t := &turn{engine: e, session: session, product: product, text: in.Text, intent: intent}
	return t.run(ctx)
}

// save persists the session.
func (e *Engine) save(ctx context.Context, session *models.Session) error {
	if err := e.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("dialogue: save session: %w", err)
	}
	return nil
}

func (e *Engine) delete(ctx context.Context, phone string) error {
	if err := e.store.DeleteSession(ctx, phone); err != nil {
		return fmt.Errorf("dialogue: delete session: %w", err)
	}
	return nil
}

// send delivers a text; failures are logged and the turn goes on.
func (e *Engine) send(ctx context.Context, to, body string) {
	if err := e.messenger.SendText(ctx, to, body); err != nil {
		e.log.Error("failed to send text", zap.String("to", logging.MaskPhone(to)), zap.Error(err))
	}
}

func (e *Engine) sendImage(ctx context.Context, to, url string) {
	if err := e.messenger.SendImage(ctx, to, url); err != nil {
		e.log.Error("failed to send image", zap.String("to", logging.MaskPhone(to)), zap.Error(err))
	}
}

func (e *Engine) pause(ctx context.Context) {
	if e.delay <= 0 {
		return
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
