package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"handlerbot"
	"handlerbot/args"
	"handlerbot/internal/config"
)

// ExampleBot exposes /start, /echo, /ping and /info; /help is synthesized.
type ExampleBot struct{}

func (e *ExampleBot) CommandDescriptions() map[string]string {
	return map[string]string{
		"start": "Welcome message",
		"echo":  "Echo your message with optional repeat",
		"ping":  "Check if the bot is alive",
		"info":  "Show chat information",
	}
}

func (e *ExampleBot) HandleStart(ctx context.Context, ev *handlerbot.Event, _ string) error {
	name := "Friend"
	if u := ev.From(); u != nil && u.FirstName != "" {
		name = u.FirstName
	}
	_, err := ev.Reply(ctx, fmt.Sprintf("Welcome %s! Send /help to see what I can do.", name))
	return err
}

func (e *ExampleBot) HandleEcho(ctx context.Context, ev *handlerbot.Event, raw string) error {
	parsed, err := args.ParseEcho(raw)
	if err != nil {
		_, sendErr := ev.Reply(ctx, fmt.Sprintf("Usage: /echo <text> [repeat]: %v", err))
		return sendErr
	}

	repeated := make([]string, parsed.Repeat)
	for i := range repeated {
		repeated[i] = parsed.Text
	}
	_, err = ev.Reply(ctx, "You said: "+strings.Join(repeated, " "))
	return err
}

func (e *ExampleBot) HandlePing(ctx context.Context, ev *handlerbot.Event, _ string) error {
	_, err := ev.Reply(ctx, "Pong!")
	return err
}

func (e *ExampleBot) HandleInfo(ctx context.Context, ev *handlerbot.Event, _ string) error {
	chat := ev.Chat()
	info := fmt.Sprintf("Chat ID: %d\nChat type: %s", chat.ID, chat.Type)
	if u := ev.From(); u != nil {
		username := u.Username
		if username == "" {
			username = "none"
		}
		info += fmt.Sprintf("\nUser ID: %d\nUsername: %s", u.ID, username)
	}
	_, err := ev.Reply(ctx, info)
	return err
}

// FallbackHandler answers anything that is not a registered command.
func (e *ExampleBot) FallbackHandler(ctx context.Context, ev *handlerbot.Event, _ string) error {
	_, err := ev.Reply(ctx, "I only understand commands, try /help.")
	return err
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	opts := []handlerbot.Option{handlerbot.WithoutTyping("ping")}
	if cfg.WebhookPath != "" {
		opts = append(opts, handlerbot.WithWebhookPath(cfg.WebhookPath))
	}

	b, err := handlerbot.New(cfg.BotToken, &ExampleBot{}, opts...)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.WebhookAddr != "" {
		err = b.RunWebhook(ctx, cfg.WebhookAddr)
	} else {
		err = b.RunPolling(ctx)
	}
	if err != nil {
		log.Fatal(err)
	}
}
