// Package notify bridges floor events to chat platforms (Slack, Discord).
// Announcements are one-way and best-effort: a failed delivery is logged
// and never blocks the lifecycle operation that raised it.
package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stitchline/stitchline/internal/config"
	"github.com/stitchline/stitchline/internal/notify/discord"
	"github.com/stitchline/stitchline/internal/notify/slack"
)

// Adapter is the interface that platform-specific implementations must
// satisfy. Each adapter handles connection management and delivery for a
// single chat platform.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Send delivers an event to the platform's configured channel.
	Send(ctx context.Context, evt Event) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// Event is a floor event formatted for display in chat.
type Event struct {
	Title    string  // headline (e.g. "Machine down on line-01")
	Body     string  // detail text
	Severity string  // "info", "warning", "error", "success"
	Color    string  // sidebar color hint (e.g. "#36a64f" for success)
	Fields   []Field // key-value metadata pairs
}

// Field is a key-value pair displayed in an event attachment.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Notifier fans an event out to every configured adapter.
type Notifier struct {
	adapters []Adapter
	log      zerolog.Logger
}

// NewNotifier creates a Notifier over a set of connected adapters.
func NewNotifier(log zerolog.Logger, adapters ...Adapter) *Notifier {
	return &Notifier{adapters: adapters, log: log}
}

// FromConfig builds a Notifier with adapters for each platform that has a
// bot token configured. Adapters are created but not connected.
func FromConfig(cfg config.NotifyConfig, log zerolog.Logger) (*Notifier, error) {
	var adapters []Adapter
	if cfg.Slack.BotToken != "" {
		a, err := slack.New(slack.AdapterOpts{
			BotToken:  cfg.Slack.BotToken,
			ChannelID: cfg.Slack.Channel,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, &slackAdapter{a})
	}
	if cfg.Discord.BotToken != "" {
		a, err := discord.New(discord.AdapterOpts{
			BotToken:  cfg.Discord.BotToken,
			ChannelID: cfg.Discord.Channel,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, &discordAdapter{a})
	}
	return NewNotifier(log, adapters...), nil
}

// Connect connects every adapter. An adapter that fails to connect is
// logged and dropped; the rest keep working.
func (n *Notifier) Connect(ctx context.Context) {
	connected := n.adapters[:0]
	for _, a := range n.adapters {
		if err := a.Connect(ctx); err != nil {
			n.log.Error().Err(err).Msg("notify adapter connect failed")
			continue
		}
		connected = append(connected, a)
	}
	n.adapters = connected
}

// Announce sends the event to every adapter. Delivery failures are logged
// and do not propagate to the caller.
func (n *Notifier) Announce(ctx context.Context, evt Event) {
	if evt.Color == "" {
		evt.Color = severityColor(evt.Severity)
	}
	for _, a := range n.adapters {
		if err := a.Send(ctx, evt); err != nil {
			n.log.Error().Err(err).Str("title", evt.Title).Msg("notify send failed")
		}
	}
}

// Close shuts down every adapter.
func (n *Notifier) Close() {
	for _, a := range n.adapters {
		if err := a.Close(); err != nil {
			n.log.Error().Err(err).Msg("notify adapter close failed")
		}
	}
}

// slackAdapter bridges the slack package's message type to Event.
type slackAdapter struct {
	a *slack.Adapter
}

func (s *slackAdapter) Connect(ctx context.Context) error { return s.a.Connect(ctx) }
func (s *slackAdapter) Close() error                      { return s.a.Close() }
func (s *slackAdapter) Send(ctx context.Context, evt Event) error {
	msg := slack.Message{
		Title:    evt.Title,
		Body:     evt.Body,
		Color:    evt.Color,
		Fallback: evt.Title,
	}
	for _, f := range evt.Fields {
		msg.Fields = append(msg.Fields, slack.Field{Name: f.Name, Value: f.Value, Short: f.Short})
	}
	return s.a.Send(ctx, msg)
}

// discordAdapter bridges the discord package's message type to Event.
type discordAdapter struct {
	a *discord.Adapter
}

func (d *discordAdapter) Connect(ctx context.Context) error { return d.a.Connect(ctx) }
func (d *discordAdapter) Close() error                      { return d.a.Close() }
func (d *discordAdapter) Send(ctx context.Context, evt Event) error {
	msg := discord.Message{
		Title: evt.Title,
		Body:  evt.Body,
		Color: evt.Color,
	}
	for _, f := range evt.Fields {
		msg.Fields = append(msg.Fields, discord.Field{Name: f.Name, Value: f.Value, Short: f.Short})
	}
	return d.a.Send(ctx, msg)
}
