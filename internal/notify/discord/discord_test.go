package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

// mockSession implements session for testing.
type mockSession struct {
	openErr error
	sendErr error
	opened  bool
	closed  bool
	embeds  []*discordgo.MessageEmbed
	targets []string
}

func (m *mockSession) Open() error {
	if m.openErr != nil {
		return m.openErr
	}
	m.opened = true
	return nil
}

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.targets = append(m.targets, channelID)
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{ID: "1"}, nil
}

func testMessage() Message {
	return Message{
		Title:  "Shift started on line-01",
		Body:   "Session ses-00001 is now tracking production.",
		Color:  "#2196f3",
		Fields: []Field{{Name: "Line", Value: "line-01", Short: true}},
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "c1"}); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := New(AdapterOpts{BotToken: "tok"}); err == nil {
		t.Error("expected error for missing channel")
	}
}

func TestConnect_OpenFailure(t *testing.T) {
	a, err := New(AdapterOpts{Session: &mockSession{openErr: errors.New("gateway down")}, ChannelID: "c1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Connect(context.Background()); err == nil {
		t.Error("expected open error")
	}
}

func TestSend_BuildsEmbed(t *testing.T) {
	sess := &mockSession{}
	a, err := New(AdapterOpts{Session: sess, ChannelID: "c1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := a.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Send(ctx, testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(sess.targets) != 1 || sess.targets[0] != "c1" {
		t.Errorf("targets = %v, want [c1]", sess.targets)
	}
	embed := sess.embeds[0]
	if embed.Title != "Shift started on line-01" {
		t.Errorf("embed title = %q", embed.Title)
	}
	if embed.Color != 0x2196f3 {
		t.Errorf("embed color = %#x, want 0x2196f3", embed.Color)
	}
	if len(embed.Fields) != 1 || !embed.Fields[0].Inline {
		t.Errorf("embed fields = %+v", embed.Fields)
	}
}

func TestSend_RequiresConnect(t *testing.T) {
	a, err := New(AdapterOpts{Session: &mockSession{}, ChannelID: "c1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Send(context.Background(), testMessage()); err == nil {
		t.Error("expected not-connected error")
	}
}

func TestClose_ShutsDownSession(t *testing.T) {
	sess := &mockSession{}
	a, err := New(AdapterOpts{Session: sess, ChannelID: "c1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := a.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sess.closed {
		t.Error("session not closed")
	}
	if err := a.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestColorInt(t *testing.T) {
	if got := colorInt("#36a64f"); got != 0x36a64f {
		t.Errorf("colorInt = %#x", got)
	}
	if got := colorInt("not-a-color"); got != 0 {
		t.Errorf("bad hint = %d, want 0", got)
	}
}
