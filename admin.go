package handlerbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminManager verifies the optional admin channel setup: a private channel
// where the bot posts operator notifications. Everything here is best-effort
// sequential API calls; failures are logged setup guidance, never errors,
// because they represent missing optional configuration.
type AdminManager struct {
	tg *bot.Bot
}

func NewAdminManager(tg *bot.Bot) *AdminManager {
	return &AdminManager{tg: tg}
}

// AdminIDs parses the ADMIN_TELEGRAM_ID environment variable: a
// comma-separated list, tolerant of surrounding brackets and spaces.
// Unparseable entries are logged and skipped.
func (m *AdminManager) AdminIDs() []int64 {
	raw := os.Getenv("ADMIN_TELEGRAM_ID")
	if raw == "" {
		return nil
	}

	clean := strings.NewReplacer("[", "", "]", "", " ", "").Replace(raw)
	var ids []int64
	for _, part := range strings.Split(clean, ",") {
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("[AdminManager.AdminIDs] invalid admin ID %q", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// CheckChannelSetup verifies that the admin channel exists, that the bot is
// an administrator in it and that every configured admin is a member. When
// the channel is missing or inaccessible, setup instructions are sent to the
// first admin instead.
func (m *AdminManager) CheckChannelSetup(ctx context.Context) {
	admins := m.AdminIDs()
	if len(admins) == 0 {
		log.Printf("[AdminManager.CheckChannelSetup] no admin IDs configured")
		return
	}

	raw := os.Getenv("ADMIN_CHANNEL_ID")
	if raw == "" {
		m.sendSetupInstructions(ctx, admins, "")
		return
	}
	channelID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("[AdminManager.CheckChannelSetup] invalid ADMIN_CHANNEL_ID %q", raw)
		m.sendSetupInstructions(ctx, admins, fmt.Sprintf("ADMIN_CHANNEL_ID %q is not a valid chat ID.", raw))
		return
	}

	chat, err := m.tg.GetChat(ctx, &bot.GetChatParams{ChatID: channelID})
	if err != nil {
		log.Printf("[AdminManager.CheckChannelSetup] cannot access admin channel %d: %v", channelID, err)
		m.sendSetupInstructions(ctx, admins, fmt.Sprintf(
			"Bot cannot access the admin channel (ID: %d). Add the bot to the channel and make it an administrator.", channelID))
		return
	}
	log.Printf("[AdminManager.CheckChannelSetup] admin channel found: %s", chat.Title)

	m.checkBotPermissions(ctx, channelID, chat.Title)
	m.checkAdminMembership(ctx, channelID, admins, chat.Title)
}

func (m *AdminManager) checkBotPermissions(ctx context.Context, channelID int64, title string) {
	me, err := m.tg.GetMe(ctx)
	if err != nil {
		log.Printf("[AdminManager.checkBotPermissions] getMe err=%v", err)
		return
	}

	member, err := m.tg.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: channelID,
		UserID: me.ID,
	})
	if err != nil {
		log.Printf("[AdminManager.checkBotPermissions] cannot check bot permissions in %q: %v", title, err)
		return
	}

	switch member.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator:
		log.Printf("[AdminManager.checkBotPermissions] bot has admin permissions in %q", title)
	default:
		log.Printf("[AdminManager.checkBotPermissions] bot is not an administrator in %q", title)
		log.Printf("[AdminManager.checkBotPermissions] grant it permissions to invite users and view members")
	}
}

func (m *AdminManager) checkAdminMembership(ctx context.Context, channelID int64, admins []int64, title string) {
	var missing []int64
	for _, adminID := range admins {
		member, err := m.tg.GetChatMember(ctx, &bot.GetChatMemberParams{
			ChatID: channelID,
			UserID: adminID,
		})
		if err != nil {
			log.Printf("[AdminManager.checkAdminMembership] cannot check membership for admin %d: %v", adminID, err)
			missing = append(missing, adminID)
			continue
		}
		if member.Type == models.ChatMemberTypeLeft || member.Type == models.ChatMemberTypeBanned {
			missing = append(missing, adminID)
			continue
		}
		log.Printf("[AdminManager.checkAdminMembership] admin %d is a member of %q", adminID, title)
	}

	if len(missing) == 0 {
		log.Printf("[AdminManager.checkAdminMembership] all admins are members of %q", title)
		return
	}

	log.Printf("[AdminManager.checkAdminMembership] admins missing from %q: %v", title, missing)
	link, err := m.tg.CreateChatInviteLink(ctx, &bot.CreateChatInviteLinkParams{ChatID: channelID})
	if err != nil {
		log.Printf("[AdminManager.checkAdminMembership] cannot create invite link: %v", err)
		return
	}
	log.Printf("[AdminManager.checkAdminMembership] invite link for missing admins: %s", link.InviteLink)
}

// sendSetupInstructions messages the first admin with step-by-step channel
// setup guidance. Sent as plain text so nothing depends on markdown escaping.
func (m *AdminManager) sendSetupInstructions(ctx context.Context, admins []int64, reason string) {
	username := "your_bot"
	if me, err := m.tg.GetMe(ctx); err == nil && me.Username != "" {
		username = me.Username
	}

	var b strings.Builder
	b.WriteString("ADMIN CHANNEL SETUP REQUIRED\n\n")
	if reason != "" {
		b.WriteString(reason + "\n\n")
	}
	b.WriteString("Create an admin channel for bot notifications and monitoring:\n\n")
	b.WriteString("Step 1: create a private channel (not a group) in Telegram.\n\n")
	fmt.Fprintf(&b, "Step 2: add @%s to the channel and make it an administrator with permissions to invite users, view members and post messages.\n\n", username)
	b.WriteString("Step 3: add the admin users to the channel:\n")
	for _, id := range admins {
		fmt.Fprintf(&b, "  - user ID %d\n", id)
	}
	b.WriteString("\nStep 4: forward any message from the channel to @userinfobot and copy the channel ID (negative, like -1001234567890).\n\n")
	b.WriteString("Step 5: set the ADMIN_CHANNEL_ID environment variable to that ID and restart the bot.")

	_, err := m.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: admins[0],
		Text:   b.String(),
	})
	if err != nil {
		log.Printf("[AdminManager.sendSetupInstructions] send to admin %d err=%v", admins[0], err)
		return
	}
	log.Printf("[AdminManager.sendSetupInstructions] setup instructions sent to admin %d", admins[0])
}
