package handlerbot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// typingPeriod is how often the typing indicator is refreshed while a
// handler runs. Telegram shows the indicator for about five seconds.
const typingPeriod = 4 * time.Second

// Fallback is implemented by bot implementations that want to receive
// non-command messages and unrecognized commands. Without it both are
// silently ignored.
type Fallback interface {
	FallbackHandler(ctx context.Context, e *Event, text string) error
}

// Bot bridges a discovered command registry to the go-telegram/bot client.
// Every HandleXxx / Handle_xxx method on the implementation becomes a slash
// command; /help is synthesized when the implementation defines none.
type Bot struct {
	tg   *bot.Bot
	impl any
	recv reflect.Value
	reg  *Registry

	settings settings
	admin    *AdminManager

	typingMu sync.Mutex
	typing   map[int64]chan struct{}

	synced atomic.Bool
}

// New builds the command registry for impl and wires it to a Bot API client.
// Registry construction errors (name collisions, bad handler signatures) are
// returned here, never at dispatch time.
func New(token string, impl any, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, errors.New("bot token is required")
	}

	reg, err := registryFor(impl)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		impl:     impl,
		recv:     reflect.ValueOf(impl),
		reg:      reg,
		settings: defaultSettings(),
		typing:   make(map[int64]chan struct{}),
	}
	for _, opt := range opts {
		opt(&b.settings)
	}

	clientOpts := append([]bot.Option{bot.WithDefaultHandler(b.handleUpdate)}, b.settings.clientOpts...)
	tg, err := bot.New(token, clientOpts...)
	if err != nil {
		return nil, err
	}
	b.tg = tg
	b.admin = NewAdminManager(tg)

	return b, nil
}

// Commands returns the discovered command descriptors sorted by name.
func (b *Bot) Commands() []*Descriptor {
	return b.reg.Commands()
}

// Client exposes the underlying Bot API client.
func (b *Bot) Client() *bot.Bot {
	return b.tg
}

// Admin returns the admin channel manager.
func (b *Bot) Admin() *AdminManager {
	return b.admin
}

// Synced reports whether the command list has been pushed to the platform.
func (b *Bot) Synced() bool {
	return b.synced.Load()
}

// SyncCommands pushes the full command list to the platform. The list is
// sorted by name, so an unchanged registry produces an identical payload on
// every call. Client errors are returned unchanged; there is no retry.
func (b *Bot) SyncCommands(ctx context.Context) error {
	commands := make([]models.BotCommand, 0, b.reg.Len())
	for _, d := range b.reg.Commands() {
		commands = append(commands, models.BotCommand{
			Command:     d.Command,
			Description: d.Description,
		})
	}

	if _, err := b.tg.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		return err
	}
	b.synced.Store(true)
	log.Printf("[Bot.SyncCommands] synced %d commands", len(commands))
	return nil
}

// Start syncs the command list and runs the admin channel checks. It is
// called by RunPolling and RunWebhook; call it directly only when driving
// the client loop yourself.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.SyncCommands(ctx); err != nil {
		return err
	}
	b.admin.CheckChannelSetup(ctx)
	return nil
}

// RunPolling starts the bot and blocks in the client's long-poll loop until
// ctx is canceled.
func (b *Bot) RunPolling(ctx context.Context) error {
	if err := b.Start(ctx); err != nil {
		return err
	}
	log.Printf("[Bot.RunPolling] polling for updates")
	b.tg.Start(ctx)
	log.Printf("[Bot.RunPolling] shut down")
	return nil
}

// RunWebhook starts the bot and serves the client's webhook handler on addr
// until ctx is canceled. Registering the webhook URL with the platform is
// left to deployment.
func (b *Bot) RunWebhook(ctx context.Context, addr string) error {
	if err := b.Start(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(b.settings.webhookPath, b.tg.WebhookHandler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go b.tg.StartWebhook(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Bot.RunWebhook] shutdown err=%v", err)
		}
	}()

	log.Printf("[Bot.RunWebhook] serving webhook on %s%s", addr, b.settings.webhookPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleUpdate is the client's default handler.
func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	b.Dispatch(ctx, update)
}

// Dispatch routes one inbound update to its matching command handler. The
// command token is the first word of the text with the leading slash and any
// @botname mention stripped; everything after the first space is passed to
// the handler untouched. Unrecognized commands and plain text go to the
// fallback handler when the implementation provides one, otherwise they are
// ignored: unexpected user input, not a fault.
func (b *Bot) Dispatch(ctx context.Context, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message
	e := &Event{tg: b.tg, Message: msg}
	text := msg.Text

	if !strings.HasPrefix(text, "/") {
		b.fallback(ctx, e, text)
		return
	}

	token, args := text, ""
	if i := strings.Index(text, " "); i >= 0 {
		token, args = text[:i], text[i+1:]
	}
	name := strings.TrimPrefix(token, "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	name = strings.ToLower(name)

	d, ok := b.reg.Get(name)
	if !ok {
		b.fallback(ctx, e, text)
		return
	}

	if !b.settings.noTyping[name] {
		stop := b.startTyping(ctx, msg.Chat.ID)
		defer stop()
	}

	var err error
	if d.synthesized {
		err = b.autoHelp(ctx, e)
	} else {
		err = d.call(b.recv, ctx, e, args)
	}
	if err != nil {
		b.settings.onError(ctx, e, err)
	}
}

func (b *Bot) fallback(ctx context.Context, e *Event, text string) {
	f, ok := b.impl.(Fallback)
	if !ok {
		return
	}
	if err := f.FallbackHandler(ctx, e, text); err != nil {
		b.settings.onError(ctx, e, err)
	}
}

// autoHelp answers the synthesized /help command with a sorted listing of
// every other registered command.
func (b *Bot) autoHelp(ctx context.Context, e *Event) error {
	lines := []string{"Available commands:"}
	for _, d := range b.reg.Commands() {
		if d.synthesized {
			continue
		}
		lines = append(lines, fmt.Sprintf("/%s - %s", d.Command, d.Description))
	}
	_, err := e.Reply(ctx, strings.Join(lines, "\n"))
	return err
}

// startTyping sends a typing action right away and refreshes it until the
// returned stop func is called. One indicator per chat; a second handler in
// the same chat piggybacks on the running one.
func (b *Bot) startTyping(ctx context.Context, chatID int64) func() {
	b.typingMu.Lock()
	if _, ok := b.typing[chatID]; ok {
		b.typingMu.Unlock()
		return func() {}
	}
	stop := make(chan struct{})
	b.typing[chatID] = stop
	b.typingMu.Unlock()

	b.sendTyping(ctx, chatID)
	go func() {
		ticker := time.NewTicker(typingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.sendTyping(ctx, chatID)
			}
		}
	}()

	return func() {
		b.typingMu.Lock()
		defer b.typingMu.Unlock()
		if c, ok := b.typing[chatID]; ok && c == stop {
			close(c)
			delete(b.typing, chatID)
		}
	}
}

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	_, err := b.tg.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		log.Printf("[Bot.sendTyping] chatID=%d err=%v", chatID, err)
	}
}
