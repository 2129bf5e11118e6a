package handlerbot

import (
	"context"
	"log"

	"github.com/go-telegram/bot"
)

// Option configures a Bot.
type Option func(*settings)

type settings struct {
	webhookPath string
	noTyping    map[string]bool
	onError     func(ctx context.Context, e *Event, err error)
	clientOpts  []bot.Option
}

func defaultSettings() settings {
	return settings{
		webhookPath: "/webhook",
		noTyping:    make(map[string]bool),
		onError: func(ctx context.Context, e *Event, err error) {
			log.Printf("[Bot.Dispatch] handler error chatID=%d err=%v", e.Message.Chat.ID, err)
		},
	}
}

// WithWebhookPath sets the path the webhook server listens on. Default is
// "/webhook".
func WithWebhookPath(path string) Option {
	return func(s *settings) {
		s.webhookPath = path
	}
}

// WithoutTyping disables the typing indicator for the named commands.
func WithoutTyping(commands ...string) Option {
	return func(s *settings) {
		for _, c := range commands {
			s.noTyping[c] = true
		}
	}
}

// WithErrorHandler replaces the default handler-error callback, which logs
// the error.
func WithErrorHandler(f func(ctx context.Context, e *Event, err error)) Option {
	return func(s *settings) {
		s.onError = f
	}
}

// WithClientOptions passes extra options through to the underlying
// go-telegram/bot client.
func WithClientOptions(opts ...bot.Option) Option {
	return func(s *settings) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}
