// Package session owns the lifecycle of a shift session on a production
// line: open-session detection, start, resume, end. Only this package
// mutates Session rows.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/stitchline/stitchline/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrConflict means the line already has an open session. The caller
	// must offer resume or an explicit end; nothing is closed silently.
	ErrConflict = errors.New("session: line already has an open session")

	// ErrDuplicateOpen means the store holds more than one active session
	// for a line. Data corruption to surface, not to resolve quietly.
	ErrDuplicateOpen = errors.New("session: multiple open sessions for line")

	// ErrClosed means the session was already ended.
	ErrClosed = errors.New("session: already closed")
)

// GenerateID creates a unique session ID in ses-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate ID: %w", err)
	}
	return "ses-" + hex.EncodeToString(b)[:5], nil
}

// FindOpen returns the open session on a line, or nil when the line is
// idle. More than one open session is reported as ErrDuplicateOpen.
func FindOpen(db *gorm.DB, lineID string) (*models.Session, error) {
	if lineID == "" {
		return nil, fmt.Errorf("session: lineID is required")
	}
	var sessions []models.Session
	if err := db.Where("line_id = ? AND active = ?", lineID, true).
		Limit(2).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("session: find open on %s: %w", lineID, err)
	}
	switch len(sessions) {
	case 0:
		return nil, nil
	case 1:
		return &sessions[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOpen, lineID)
	}
}

// StartOpts holds parameters for opening a session.
type StartOpts struct {
	LineID       string
	SupervisorID string
	StyleID      string
	TimeTableID  string
	HourlyTarget int
}

// Start opens a session on a line. Fails with ErrConflict when the line
// already has one. The check and the insert run in one transaction, and the
// unique index on the active-line key makes a simultaneous start from a
// second terminal fail instead of producing two open sessions.
func Start(db *gorm.DB, opts StartOpts) (*models.Session, error) {
	if opts.LineID == "" {
		return nil, fmt.Errorf("session: lineID is required")
	}
	if opts.SupervisorID == "" {
		return nil, fmt.Errorf("session: supervisorID is required")
	}
	if opts.StyleID == "" {
		return nil, fmt.Errorf("session: styleID is required")
	}
	if opts.TimeTableID == "" {
		return nil, fmt.Errorf("session: timeTableID is required")
	}
	if opts.HourlyTarget <= 0 {
		return nil, fmt.Errorf("session: hourlyTarget must be positive")
	}

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	lineID := opts.LineID
	sess := models.Session{
		ID:           id,
		LineID:       opts.LineID,
		ActiveLine:   &lineID,
		SupervisorID: opts.SupervisorID,
		StyleID:      opts.StyleID,
		TimeTableID:  opts.TimeTableID,
		HourlyTarget: opts.HourlyTarget,
		Active:       true,
		StartedAt:    time.Now(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		existing, err := FindOpen(tx, opts.LineID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s held by %s", ErrConflict, opts.LineID, existing.ID)
		}
		if err := tx.Create(&sess).Error; err != nil {
			return fmt.Errorf("session: create on %s: %w", opts.LineID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Resume rehydrates an open session found by FindOpen. A read-only
// operation: it reloads the session row with its references so the terminal
// can pick up where the previous one left off.
func Resume(db *gorm.DB, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session: sessionID is required")
	}
	var sess models.Session
	err := db.Preload("Line").Preload("Style").
		Preload("TimeTable.Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", sessionID).First(&sess).Error
	if err != nil {
		return nil, fmt.Errorf("session: resume %s: %w", sessionID, err)
	}
	if !sess.Active {
		return nil, fmt.Errorf("%w: %s", ErrClosed, sessionID)
	}
	return &sess, nil
}

// End closes a session: deactivates it, stamps the end time, and closes
// every downtime record still open under it with the same end time, all in
// one transaction. Dangling downtime duration is therefore always bounded
// by the shift. Ending an already-closed session reports ErrClosed.
func End(db *gorm.DB, sess *models.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session: session is required")
	}

	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Session{}).
			Where("id = ? AND active = ?", sess.ID, true).
			Updates(map[string]interface{}{
				"active":      false,
				"active_line": nil,
				"ended_at":    now,
			})
		if result.Error != nil {
			return fmt.Errorf("session: end %s: %w", sess.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrClosed, sess.ID)
		}

		if err := tx.Model(&models.DowntimeRecord{}).
			Where("session_id = ? AND status = ?", sess.ID, models.DowntimeOpen).
			Updates(map[string]interface{}{
				"status":   models.DowntimeClosed,
				"ended_at": now,
			}).Error; err != nil {
			return fmt.Errorf("session: close dangling downtime for %s: %w", sess.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sess.Active = false
	sess.ActiveLine = nil
	sess.EndedAt = &now
	return nil
}
