package handlerbot

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestAdmin(t *testing.T) (*AdminManager, *fakeTelegram) {
	t.Helper()
	b, f := newTestBot(t, &echoBot{})
	return b.Admin(), f
}

func TestAdminIDs(t *testing.T) {
	cases := []struct {
		name string
		env  string
		want []int64
	}{
		{name: "unset", env: "", want: nil},
		{name: "single", env: "123", want: []int64{123}},
		{name: "comma separated", env: "123,456", want: []int64{123, 456}},
		{name: "brackets and spaces", env: "[123, 456]", want: []int64{123, 456}},
		{name: "junk entries skipped", env: "123,abc,456", want: []int64{123, 456}},
		{name: "trailing comma", env: "123,", want: []int64{123}},
	}

	m, _ := newTestAdmin(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ADMIN_TELEGRAM_ID", tc.env)
			if diff := cmp.Diff(tc.want, m.AdminIDs()); diff != "" {
				t.Errorf("AdminIDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckChannelSetupNoAdmins(t *testing.T) {
	t.Setenv("ADMIN_TELEGRAM_ID", "")
	t.Setenv("ADMIN_CHANNEL_ID", "")
	m, f := newTestAdmin(t)

	m.CheckChannelSetup(context.Background())

	if f.callCount("sendMessage") != 0 {
		t.Error("instructions sent with no admins configured")
	}
}

func TestCheckChannelSetupSendsInstructions(t *testing.T) {
	t.Setenv("ADMIN_TELEGRAM_ID", "5,6")
	t.Setenv("ADMIN_CHANNEL_ID", "")
	m, f := newTestAdmin(t)

	m.CheckChannelSetup(context.Background())

	if f.callCount("sendMessage") != 1 {
		t.Fatalf("sendMessage called %d times, want 1", f.callCount("sendMessage"))
	}
	sent := f.call("sendMessage", 0)
	if sent["chat_id"] != "5" {
		t.Errorf("instructions sent to chat %q, want first admin 5", sent["chat_id"])
	}
	for _, fragment := range []string{"ADMIN CHANNEL SETUP REQUIRED", "@test_bot", "user ID 5", "user ID 6", "ADMIN_CHANNEL_ID"} {
		if !strings.Contains(sent["text"], fragment) {
			t.Errorf("instructions missing %q:\n%s", fragment, sent["text"])
		}
	}
}

func TestCheckChannelSetupVerifiesChannel(t *testing.T) {
	t.Setenv("ADMIN_TELEGRAM_ID", "5")
	t.Setenv("ADMIN_CHANNEL_ID", "-1001")
	m, f := newTestAdmin(t)

	m.CheckChannelSetup(context.Background())

	if f.callCount("getChat") != 1 {
		t.Errorf("getChat called %d times, want 1", f.callCount("getChat"))
	}
	// One membership check for the bot itself, one per admin.
	if f.callCount("getChatMember") != 2 {
		t.Errorf("getChatMember called %d times, want 2", f.callCount("getChatMember"))
	}
	if f.callCount("sendMessage") != 0 {
		t.Error("instructions sent even though the channel is accessible")
	}
}

func TestCheckChannelSetupInvalidChannelID(t *testing.T) {
	t.Setenv("ADMIN_TELEGRAM_ID", "5")
	t.Setenv("ADMIN_CHANNEL_ID", "not-a-number")
	m, f := newTestAdmin(t)

	m.CheckChannelSetup(context.Background())

	if f.callCount("getChat") != 0 {
		t.Error("getChat called for an unparseable channel ID")
	}
	if f.callCount("sendMessage") != 1 {
		t.Fatalf("sendMessage called %d times, want 1", f.callCount("sendMessage"))
	}
	if !strings.Contains(f.call("sendMessage", 0)["text"], "not-a-number") {
		t.Error("instructions do not mention the invalid value")
	}
}
