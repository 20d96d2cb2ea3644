// Package quality implements the reject/rework lifecycle. Submission is
// QC-attested: the record does not exist until a QC verifies, and every
// disposition takes a second (possibly different) QC sign-off.
package quality

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/production"
	"github.com/stitchline/stitchline/internal/verify"
	"gorm.io/gorm"
)

// Disposition actions.
const (
	ActionMarkPerfect     = "mark_perfect"
	ActionClose           = "close"
	ActionConvertToReject = "convert_to_reject"
)

var (
	// ErrAlreadyDisposed means the record left the open state before this
	// attempt; the operator's view was stale.
	ErrAlreadyDisposed = errors.New("quality: already disposed")

	// ErrInvalidAction means the action does not exist for the record's
	// kind (e.g. convert_to_reject on a reject).
	ErrInvalidAction = errors.New("quality: invalid disposition action")
)

// GenerateID creates a unique quality event ID in qe-xxxxx format.
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("quality: generate ID: %w", err)
	}
	return "qe-" + hex.EncodeToString(b)[:5], nil
}

// SubmitOpts holds parameters for a reject or rework submission.
type SubmitOpts struct {
	SessionID          string
	Kind               string // reject | rework
	Reason             string
	Operation          string
	Count              int
	Comments           string
	SlotID             string // slot whose output the units were posted to
	RecordedAsProduced bool   // rejects only: units already counted as output
}

// Submit verifies the submitting QC and creates an open quality event.
// Verification failure means no record is written at all.
func Submit(db *gorm.DB, gate *verify.Gate, opts SubmitOpts, qcNo, credential string) (*models.QualityEvent, error) {
	if opts.SessionID == "" {
		return nil, fmt.Errorf("quality: sessionID is required")
	}
	if opts.Kind != models.QualityReject && opts.Kind != models.QualityRework {
		return nil, fmt.Errorf("quality: unknown kind %q", opts.Kind)
	}
	if opts.Reason == "" {
		return nil, fmt.Errorf("quality: reason is required")
	}
	if opts.Count <= 0 {
		return nil, fmt.Errorf("quality: count must be positive")
	}
	if !gate.Verify(models.RoleQC, qcNo, credential) {
		return nil, fmt.Errorf("%w: qc %s", verify.ErrFailed, qcNo)
	}

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	rec := models.QualityEvent{
		ID:                 id,
		SessionID:          opts.SessionID,
		Kind:               opts.Kind,
		Reason:             opts.Reason,
		Operation:          opts.Operation,
		Count:              opts.Count,
		Comments:           opts.Comments,
		SlotID:             opts.SlotID,
		RecordedAsProduced: opts.RecordedAsProduced && opts.Kind == models.QualityReject,
		SubmittedBy:        qcNo,
		Status:             models.QualityOpen,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("quality: submit %s on %s: %w", opts.Kind, opts.SessionID, err)
	}
	return &rec, nil
}

// Get loads a quality event by id.
func Get(db *gorm.DB, id string) (*models.QualityEvent, error) {
	var rec models.QualityEvent
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("quality: get %s: %w", id, err)
	}
	return &rec, nil
}

// Dispose applies a disposition under QC sign-off.
//
// Rejects accept mark_perfect and close. Closing a reject flagged as
// recorded-as-produced backs its count out of the slot's output so
// efficiency is not overstated by defective units.
//
// Reworks accept mark_perfect and convert_to_reject. Conversion creates a
// new open reject carrying the rework's reason, operation, count and
// comments (with a provenance note) and closes the rework — the reject
// still needs its own disposition with its own sign-off later.
func Dispose(db *gorm.DB, gate *verify.Gate, id, action, qcNo, credential string) (*models.QualityEvent, error) {
	rec, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.QualityOpen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDisposed, id)
	}

	var newStatus string
	switch {
	case action == ActionMarkPerfect:
		newStatus = models.QualityPerfect
	case action == ActionClose && rec.Kind == models.QualityReject:
		newStatus = models.QualityClosed
	case action == ActionConvertToReject && rec.Kind == models.QualityRework:
		newStatus = models.QualityClosed
	default:
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidAction, action, rec.Kind)
	}

	if !gate.Verify(models.RoleQC, qcNo, credential) {
		return nil, fmt.Errorf("%w: qc %s", verify.ErrFailed, qcNo)
	}

	var converted *models.QualityEvent
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.QualityEvent{}).
			Where("id = ? AND status = ?", id, models.QualityOpen).
			Updates(map[string]interface{}{
				"status":      newStatus,
				"disposed_by": qcNo,
			})
		if result.Error != nil {
			return fmt.Errorf("quality: dispose %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyDisposed, id)
		}

		if action == ActionClose && rec.RecordedAsProduced && rec.SlotID != "" {
			note := fmt.Sprintf("reject %s confirmed", rec.ID)
			if err := production.Adjust(tx, rec.SessionID, rec.SlotID, -rec.Count, note); err != nil {
				return err
			}
		}

		if action == ActionConvertToReject {
			rejectID, err := GenerateID()
			if err != nil {
				return err
			}
			comments := rec.Comments
			if comments != "" {
				comments += "\n"
			}
			comments += fmt.Sprintf("converted from rework %s", rec.ID)
			reject := models.QualityEvent{
				ID:          rejectID,
				SessionID:   rec.SessionID,
				Kind:        models.QualityReject,
				Reason:      rec.Reason,
				Operation:   rec.Operation,
				Count:       rec.Count,
				Comments:    comments,
				SlotID:      rec.SlotID,
				SubmittedBy: qcNo,
				Status:      models.QualityOpen,
			}
			if err := tx.Create(&reject).Error; err != nil {
				return fmt.Errorf("quality: create reject from rework %s: %w", rec.ID, err)
			}
			converted = &reject
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec.Status = newStatus
	rec.DisposedBy = qcNo
	if converted != nil {
		return converted, nil
	}
	return rec, nil
}
