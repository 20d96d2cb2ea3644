// Package production appends output units against resolved slots and
// derives the per-slot output series and order balance.
package production

import (
	"errors"
	"fmt"

	"github.com/stitchline/stitchline/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrInvalidSlot means the slot does not belong to the session's
	// time table.
	ErrInvalidSlot = errors.New("production: slot not in session time table")

	// ErrSessionClosed means output was posted against an ended session.
	ErrSessionClosed = errors.New("production: session is closed")
)

// RecordUnit appends one produced unit against a slot of an open session.
// Over-production is accepted; the balance may go negative and the caller
// decides what to show the operator.
func RecordUnit(db *gorm.DB, sess *models.Session, slotID string) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("production: session is required")
	}
	if slotID == "" {
		return fmt.Errorf("production: slotID is required")
	}

	// Re-read the active flag: the session may have been ended from
	// another terminal since this one loaded it.
	var current models.Session
	if err := db.Select("active").Where("id = ?", sess.ID).First(&current).Error; err != nil {
		return fmt.Errorf("production: load session %s: %w", sess.ID, err)
	}
	if !current.Active {
		return fmt.Errorf("%w: %s", ErrSessionClosed, sess.ID)
	}

	var count int64
	if err := db.Model(&models.TimeSlot{}).
		Where("id = ? AND time_table_id = ?", slotID, sess.TimeTableID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("production: check slot %s: %w", slotID, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSlot, slotID)
	}

	rec := models.ProductionRecord{
		SessionID: sess.ID,
		SlotID:    slotID,
		Units:     1,
	}
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("production: record unit on %s/%s: %w", sess.ID, slotID, err)
	}
	return nil
}

// Adjust appends a correction record against a slot, used when confirmed
// rejects were already posted as output. History stays append-only; the
// adjustment carries a note naming its cause.
func Adjust(db *gorm.DB, sessionID, slotID string, delta int, note string) error {
	if sessionID == "" || slotID == "" {
		return fmt.Errorf("production: sessionID and slotID are required")
	}
	if delta == 0 {
		return nil
	}
	rec := models.ProductionRecord{
		SessionID: sessionID,
		SlotID:    slotID,
		Units:     delta,
		Note:      note,
	}
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("production: adjust %s/%s by %d: %w", sessionID, slotID, delta, err)
	}
	return nil
}

// OutputsBySlot returns the output series for a session, one entry per slot
// of its time table, index-aligned with the table's configured order. Only
// this session's records count; prior sessions on the same line never leak
// in. The aggregate is a sum, so ordering of posts cannot lose units.
func OutputsBySlot(db *gorm.DB, sess *models.Session) ([]int, error) {
	if sess == nil || sess.ID == "" {
		return nil, fmt.Errorf("production: session is required")
	}

	var slots []models.TimeSlot
	if err := db.Where("time_table_id = ?", sess.TimeTableID).
		Order("position ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("production: load slots for %s: %w", sess.TimeTableID, err)
	}

	type row struct {
		SlotID string
		Total  int
	}
	var rows []row
	if err := db.Model(&models.ProductionRecord{}).
		Select("slot_id, COALESCE(SUM(units),0) as total").
		Where("session_id = ?", sess.ID).
		Group("slot_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("production: aggregate outputs for %s: %w", sess.ID, err)
	}

	totals := make(map[string]int, len(rows))
	for _, r := range rows {
		totals[r.SlotID] = r.Total
	}

	outputs := make([]int, len(slots))
	for i, slot := range slots {
		outputs[i] = totals[slot.ID]
	}
	return outputs, nil
}

// Balance returns order quantity minus total recorded units for the
// session's style. Negative means over-production, which is reported as-is.
func Balance(db *gorm.DB, sess *models.Session) (int, error) {
	if sess == nil || sess.ID == "" {
		return 0, fmt.Errorf("production: session is required")
	}

	var style models.Style
	if err := db.Where("id = ?", sess.StyleID).First(&style).Error; err != nil {
		return 0, fmt.Errorf("production: load style %s: %w", sess.StyleID, err)
	}

	var total int64
	if err := db.Model(&models.ProductionRecord{}).
		Select("COALESCE(SUM(units),0)").
		Where("session_id = ?", sess.ID).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("production: total units for %s: %w", sess.ID, err)
	}
	return style.OrderQuantity - int(total), nil
}
