package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stitchline/stitchline/internal/config"
	"github.com/stitchline/stitchline/internal/metrics"
	"github.com/stitchline/stitchline/internal/session"
	"gorm.io/gorm"
)

// handleSSE streams open-event counts to wall displays. Each connection
// runs its own metrics poller on the configured cadence; a counts event is
// only sent when the snapshot changed since the last one, and heartbeats
// keep proxies from cutting idle streams.
func handleSSE(db *gorm.DB, lineID string, cfg config.MetricsConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"line_id": lineID})
		c.Writer.Flush()

		ctx := c.Request.Context()
		heartbeat := time.NewTicker(15 * time.Second)
		defer heartbeat.Stop()
		// A line that is idle at connect gets re-checked for a session on
		// the default interval.
		retry := time.NewTicker(metrics.DefaultPollInterval)
		defer retry.Stop()

		var (
			last      *metrics.Counts
			sessionID string
			snapshots <-chan metrics.Counts
			stopPoll  context.CancelFunc
		)
		defer func() {
			if stopPoll != nil {
				stopPoll()
			}
		}()

		startPoller := func() {
			if stopPoll != nil {
				stopPoll()
				stopPoll = nil
			}
			sess, err := session.FindOpen(db, lineID)
			if err != nil || sess == nil {
				return
			}
			p, err := metrics.NewPoller(metrics.PollerOpts{
				DB:        db,
				SessionID: sess.ID,
				Config:    cfg,
				Log:       log,
			})
			if err != nil {
				log.Error().Err(err).Str("session", sess.ID).Msg("metrics poller")
				return
			}
			pollCtx, cancel := context.WithCancel(ctx)
			sessionID = sess.ID
			snapshots = p.Run(pollCtx)
			stopPoll = cancel
		}
		startPoller()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-retry.C:
				if snapshots == nil {
					startPoller()
				}
			case counts, ok := <-snapshots:
				if !ok {
					snapshots = nil
					continue
				}
				if last != nil && counts == *last {
					continue
				}
				last = &counts
				writeSSE(c.Writer, "counts", gin.H{
					"session_id": sessionID,
					"counts":     counts,
				})
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
