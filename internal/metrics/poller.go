package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stitchline/stitchline/internal/config"
	"gorm.io/gorm"
)

// DefaultPollInterval applies when neither a cron schedule nor a poll
// interval is configured.
const DefaultPollInterval = 30 * time.Second

// Poller recomputes the session's open-event counts on a cadence and
// publishes each snapshot to a channel. A cron schedule takes precedence
// over the fixed interval; Refresh forces an immediate recompute from
// either mode.
type Poller struct {
	db        *gorm.DB
	sessionID string
	schedule  string
	interval  time.Duration
	log       zerolog.Logger
	refresh   chan struct{}
}

// PollerOpts holds parameters for creating a Poller.
type PollerOpts struct {
	DB        *gorm.DB
	SessionID string
	Config    config.MetricsConfig
	Log       zerolog.Logger
}

// NewPoller creates a Poller.
func NewPoller(opts PollerOpts) (*Poller, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("metrics: poller: db is required")
	}
	if opts.SessionID == "" {
		return nil, fmt.Errorf("metrics: poller: sessionID is required")
	}
	interval := time.Duration(opts.Config.PollSeconds) * time.Second
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if opts.Config.Schedule != "" {
		if _, err := cronParser.Parse(opts.Config.Schedule); err != nil {
			return nil, fmt.Errorf("metrics: poller: parse schedule %q: %w", opts.Config.Schedule, err)
		}
	}
	return &Poller{
		db:        opts.DB,
		sessionID: opts.SessionID,
		schedule:  opts.Config.Schedule,
		interval:  interval,
		log:       opts.Log,
		refresh:   make(chan struct{}, 1),
	}, nil
}

// Refresh requests an immediate recompute. Safe to call from any
// goroutine; coalesces with a pending request.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run starts the poll loop. An initial snapshot is published right away,
// then one per tick or refresh; a refresh restarts the wait, so the next
// scheduled emit comes a full cadence later. The channel is closed when the
// context is cancelled. Snapshot errors are logged and skipped; the loop
// keeps going.
func (p *Poller) Run(ctx context.Context) <-chan Counts {
	ch := make(chan Counts, 16)
	go func() {
		defer close(ch)

		emit := func() {
			counts, err := Snapshot(p.db, p.sessionID)
			if err != nil {
				p.log.Error().Err(err).Str("session", p.sessionID).Msg("metrics snapshot failed")
				return
			}
			select {
			case ch <- counts:
			case <-ctx.Done():
			}
		}

		emit()
		timer := time.NewTimer(p.nextWait())
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.refresh:
				emit()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(p.nextWait())
			case <-timer.C:
				emit()
				timer.Reset(p.nextWait())
			}
		}
	}()
	return ch
}

// nextWait returns the duration until the next scheduled recompute,
// preferring the cron schedule when one is set.
func (p *Poller) nextWait() time.Duration {
	if p.schedule != "" {
		if d := nextCronDuration(p.schedule); d > 0 {
			return d
		}
	}
	return p.interval
}
