package handlerbot

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Event wraps one inbound message and gives handlers typed access to its
// sender and chat plus a reply shortcut.
type Event struct {
	tg      *bot.Bot
	Message *models.Message
}

// Chat returns the chat the message was sent in.
func (e *Event) Chat() models.Chat {
	return e.Message.Chat
}

// From returns the sender, nil for channel posts.
func (e *Event) From() *models.User {
	return e.Message.From
}

// Text returns the raw message text.
func (e *Event) Text() string {
	return e.Message.Text
}

// Reply sends text to the message's chat as a reply to it.
func (e *Event) Reply(ctx context.Context, text string) (*models.Message, error) {
	return e.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.Message.Chat.ID,
		Text:   text,
		ReplyParameters: &models.ReplyParameters{
			MessageID: e.Message.ID,
		},
	})
}

// Client exposes the underlying Bot API client for calls the Event helpers
// do not cover.
func (e *Event) Client() *bot.Bot {
	return e.tg
}
