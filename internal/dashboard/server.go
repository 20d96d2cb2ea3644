// Package dashboard serves the read-only floor dashboard: a JSON API over
// the hourly board, line status and open events, plus an SSE stream for
// wall displays. It never mutates state; all writes go through the CLI.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stitchline/stitchline/internal/config"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the dashboard server. Metrics sets the
// cadence for SSE snapshot pollers.
type StartOpts struct {
	DB      *gorm.DB
	LineID  string
	Port    int
	Metrics config.MetricsConfig
	Log     zerolog.Logger
	Out     io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("dashboard: db is required")
	}
	if opts.LineID == "" {
		return fmt.Errorf("dashboard: lineID is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts.DB, opts.LineID, opts.Metrics, opts.Log)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
