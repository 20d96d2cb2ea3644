// Package metrics recomputes open-event counts for display. A snapshot is
// a pure read; the poller recomputes on a fixed cadence or on explicit
// refresh and publishes on a channel the display layer consumes.
package metrics

import (
	"fmt"

	"github.com/stitchline/stitchline/internal/models"
	"gorm.io/gorm"
)

// Counts holds the currently-open event counts for one session.
type Counts struct {
	Rejects int64 `json:"rejects"`
	Reworks int64 `json:"reworks"`
	Late    int64 `json:"late"`
	Absent  int64 `json:"absent"`
}

// Snapshot counts open records per category scoped to a session. Always
// recomputed from the store; nothing is cached.
func Snapshot(db *gorm.DB, sessionID string) (Counts, error) {
	var counts Counts
	if sessionID == "" {
		return counts, fmt.Errorf("metrics: sessionID is required")
	}

	if err := db.Model(&models.QualityEvent{}).
		Where("session_id = ? AND kind = ? AND status = ?", sessionID, models.QualityReject, models.QualityOpen).
		Count(&counts.Rejects).Error; err != nil {
		return counts, fmt.Errorf("metrics: count rejects for %s: %w", sessionID, err)
	}
	if err := db.Model(&models.QualityEvent{}).
		Where("session_id = ? AND kind = ? AND status = ?", sessionID, models.QualityRework, models.QualityOpen).
		Count(&counts.Reworks).Error; err != nil {
		return counts, fmt.Errorf("metrics: count reworks for %s: %w", sessionID, err)
	}
	if err := db.Model(&models.AttendanceEvent{}).
		Where("session_id = ? AND kind = ? AND status = ?", sessionID, models.AttendanceLate, models.AttendanceOpen).
		Count(&counts.Late).Error; err != nil {
		return counts, fmt.Errorf("metrics: count late for %s: %w", sessionID, err)
	}
	if err := db.Model(&models.AttendanceEvent{}).
		Where("session_id = ? AND kind = ? AND status = ?", sessionID, models.AttendanceAbsent, models.AttendanceOpen).
		Count(&counts.Absent).Error; err != nil {
		return counts, fmt.Errorf("metrics: count absent for %s: %w", sessionID, err)
	}
	return counts, nil
}
