package services

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Notifier delivers a free-text alert to the shop admin.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// WhatsAppNotifier messages the admin's WhatsApp number.
type WhatsAppNotifier struct {
	messenger Messenger
	number    string
}

// NewWhatsAppNotifier returns a notifier sending to number.
func NewWhatsAppNotifier(m Messenger, number string) *WhatsAppNotifier {
	return &WhatsAppNotifier{messenger: m, number: number}
}

func (w *WhatsAppNotifier) Notify(ctx context.Context, text string) error {
	return w.messenger.SendText(ctx, w.number, text)
}

// slackClient is the part of the Slack API the notifier uses.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackNotifier posts alerts to a Slack channel.
type SlackNotifier struct {
	client    slackClient
	channelID string
}

// NewSlackNotifier builds a notifier from a bot token.
func NewSlackNotifier(token, channelID string) *SlackNotifier {
	return &SlackNotifier{client: slackapi.New(token), channelID: channelID}
}

func (s *SlackNotifier) Notify(ctx context.Context, text string) error {
	if _, _, err := s.client.PostMessageContext(ctx, s.channelID, slackapi.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// discordSession is the part of *discordgo.Session the notifier uses.
type discordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts alerts to a Discord channel over REST.
type DiscordNotifier struct {
	session   discordSession
	channelID string
}

// NewDiscordNotifier builds a notifier from a bot token.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &DiscordNotifier{session: dg, channelID: channelID}, nil
}

func (d *DiscordNotifier) Notify(ctx context.Context, text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}

// FanOut sends every alert to all configured channels concurrently. It
// fails only when every channel failed.
type FanOut struct {
	notifiers []Notifier
	log       *zap.Logger
}

// NewFanOut combines notifiers; nil entries are skipped.
func NewFanOut(log *zap.Logger, notifiers ...Notifier) *FanOut {
	f := &FanOut{log: log}
	for _, n := range notifiers {
		if n != nil {
			f.notifiers = append(f.notifiers, n)
		}
	}
	return f
}

// Len returns the number of channels.
func (f *FanOut) Len() int { return len(f.notifiers) }

func (f *FanOut) Notify(ctx context.Context, text string) error {
	if len(f.notifiers) == 0 {
		return nil
	}

	errs := make([]error, len(f.notifiers))
	var g errgroup.Group
	for i, n := range f.notifiers {
		g.Go(func() error {
			errs[i] = n.Notify(ctx, text)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			f.log.Warn("admin notification failed", zap.Error(err))
		}
	}
	if failed == len(f.notifiers) {
		return fmt.Errorf("notifier: all %d channels failed: %w", failed, errs[0])
	}
	return nil
}
