// Package attendance tracks late arrivals and absences within a session.
// Transitions carry supervisor sign-off; a late employee who never returns
// becomes an absent record through a record-creating conversion.
package attendance

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/verify"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyClosed means the record left the open state before this
	// attempt.
	ErrAlreadyClosed = errors.New("attendance: already closed")

	// ErrWrongKind means the transition does not exist for the record's
	// kind (e.g. converting an absent record).
	ErrWrongKind = errors.New("attendance: operation not valid for this kind")
)

// GenerateID creates a unique attendance event ID in ae-xxxxx format.
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("attendance: generate ID: %w", err)
	}
	return "ae-" + hex.EncodeToString(b)[:5], nil
}

// SubmitOpts holds parameters for a late or absent submission.
type SubmitOpts struct {
	SessionID  string
	Kind       string // late | absent
	EmployeeID string
	Reason     string
}

// Submit verifies the supervisor and creates an open attendance event.
func Submit(db *gorm.DB, gate *verify.Gate, opts SubmitOpts, supervisorNo, credential string) (*models.AttendanceEvent, error) {
	if opts.SessionID == "" {
		return nil, fmt.Errorf("attendance: sessionID is required")
	}
	if opts.Kind != models.AttendanceLate && opts.Kind != models.AttendanceAbsent {
		return nil, fmt.Errorf("attendance: unknown kind %q", opts.Kind)
	}
	if opts.EmployeeID == "" {
		return nil, fmt.Errorf("attendance: employeeID is required")
	}
	if !gate.Verify(models.RoleSupervisor, supervisorNo, credential) {
		return nil, fmt.Errorf("%w: supervisor %s", verify.ErrFailed, supervisorNo)
	}

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	rec := models.AttendanceEvent{
		ID:         id,
		SessionID:  opts.SessionID,
		Kind:       opts.Kind,
		EmployeeID: opts.EmployeeID,
		Reason:     opts.Reason,
		Status:     models.AttendanceOpen,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("attendance: submit %s on %s: %w", opts.Kind, opts.SessionID, err)
	}
	return &rec, nil
}

// Get loads an attendance event by id.
func Get(db *gorm.DB, id string) (*models.AttendanceEvent, error) {
	var rec models.AttendanceEvent
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("attendance: get %s: %w", id, err)
	}
	return &rec, nil
}

// MarkReturned closes an open late record: the employee showed up.
func MarkReturned(db *gorm.DB, gate *verify.Gate, id, supervisorNo, credential string) (*models.AttendanceEvent, error) {
	return transition(db, gate, id, models.AttendanceLate, models.AttendanceReturned, supervisorNo, credential)
}

// Close closes an open absent record at end of investigation.
func Close(db *gorm.DB, gate *verify.Gate, id, supervisorNo, credential string) (*models.AttendanceEvent, error) {
	return transition(db, gate, id, models.AttendanceAbsent, models.AttendanceClosed, supervisorNo, credential)
}

// ConvertToAbsent closes an open late record as "left" and creates a new
// open absent record for the same employee. The late record is never
// mutated into an absence; the conversion is a record-creating transition.
func ConvertToAbsent(db *gorm.DB, gate *verify.Gate, id, supervisorNo, credential string) (*models.AttendanceEvent, error) {
	rec, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if rec.Kind != models.AttendanceLate {
		return nil, fmt.Errorf("%w: convert on %s", ErrWrongKind, rec.Kind)
	}
	if rec.Status != models.AttendanceOpen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClosed, id)
	}
	if !gate.Verify(models.RoleSupervisor, supervisorNo, credential) {
		return nil, fmt.Errorf("%w: supervisor %s", verify.ErrFailed, supervisorNo)
	}

	absentID, err := GenerateID()
	if err != nil {
		return nil, err
	}
	absent := models.AttendanceEvent{
		ID:         absentID,
		SessionID:  rec.SessionID,
		Kind:       models.AttendanceAbsent,
		EmployeeID: rec.EmployeeID,
		Reason:     fmt.Sprintf("did not return after late arrival %s", rec.ID),
		Status:     models.AttendanceOpen,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AttendanceEvent{}).
			Where("id = ? AND status = ?", id, models.AttendanceOpen).
			Update("status", models.AttendanceLeft)
		if result.Error != nil {
			return fmt.Errorf("attendance: convert %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyClosed, id)
		}
		if err := tx.Create(&absent).Error; err != nil {
			return fmt.Errorf("attendance: create absent from %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &absent, nil
}

// transition applies a guarded status change to an open record of a kind.
func transition(db *gorm.DB, gate *verify.Gate, id, wantKind, newStatus, supervisorNo, credential string) (*models.AttendanceEvent, error) {
	rec, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if rec.Kind != wantKind {
		return nil, fmt.Errorf("%w: %s is %s", ErrWrongKind, id, rec.Kind)
	}
	if rec.Status != models.AttendanceOpen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClosed, id)
	}
	if !gate.Verify(models.RoleSupervisor, supervisorNo, credential) {
		return nil, fmt.Errorf("%w: supervisor %s", verify.ErrFailed, supervisorNo)
	}

	result := db.Model(&models.AttendanceEvent{}).
		Where("id = ? AND status = ?", id, models.AttendanceOpen).
		Update("status", newStatus)
	if result.Error != nil {
		return nil, fmt.Errorf("attendance: update %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClosed, id)
	}
	rec.Status = newStatus
	return rec, nil
}
