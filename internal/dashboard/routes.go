package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stitchline/stitchline/internal/config"
	"github.com/stitchline/stitchline/internal/downtime"
	"github.com/stitchline/stitchline/internal/session"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, lineID string, metricsCfg config.MetricsConfig, log zerolog.Logger) {
	router.GET("/healthz", handleHealth(db))
	router.GET("/api/status", handleStatus(db, lineID))
	router.GET("/api/board", handleBoard(db, lineID))
	router.GET("/api/downtime", handleDowntime(db, lineID))
	router.GET("/api/events", handleSSE(db, lineID, metricsCfg, log))
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleStatus(db *gorm.DB, lineID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := LineStatus(db, lineID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

func handleBoard(db *gorm.DB, lineID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.FindOpen(db, lineID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if sess == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no open session"})
			return
		}
		board, err := HourlyBoard(db, sess, time.Now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, board)
	}
}

func handleDowntime(db *gorm.DB, lineID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.FindOpen(db, lineID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if sess == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no open session"})
			return
		}
		records, err := downtime.ListOpen(db, sess.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "records": records})
	}
}
