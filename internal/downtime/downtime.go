// Package downtime implements the state machines for in-shift stoppage
// records: machine downtime with a mechanic acknowledgement gate, style
// changeovers with a four-step checklist, and supply/generic stoppages.
package downtime

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/verify"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyAcknowledged means the machine downtime was acknowledged
	// before; a stale UI retried.
	ErrAlreadyAcknowledged = errors.New("downtime: already acknowledged")

	// ErrNotAcknowledged means a machine downtime cannot be resolved
	// before a mechanic acknowledges it.
	ErrNotAcknowledged = errors.New("downtime: not acknowledged by a mechanic")

	// ErrAlreadyResolved means the record was closed before this attempt.
	ErrAlreadyResolved = errors.New("downtime: already resolved")

	// ErrStepAlreadyComplete means a changeover checklist step was
	// completed twice.
	ErrStepAlreadyComplete = errors.New("downtime: checklist step already complete")

	// ErrNotCommandable means the record's lifecycle does not accept the
	// attempted command (e.g. resolving a changeover, which only closes
	// when its checklist completes).
	ErrNotCommandable = errors.New("downtime: operation not valid for this category")
)

// ChecklistSteps is the fixed changeover checklist in completion order.
// Steps complete independently; order here is display order only.
var ChecklistSteps = []string{
	models.StepMachineSetup,
	models.StepPeopleAllocated,
	models.StepFirstUnitOff,
	models.StepQCApproval,
}

// GenerateID creates a unique downtime ID in dt-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("downtime: generate ID: %w", err)
	}
	return "dt-" + hex.EncodeToString(b)[:5], nil
}

// SubmitOpts holds parameters for opening a downtime record. Only the
// fields relevant to the category are read.
type SubmitOpts struct {
	SessionID      string
	LineID         string
	Category       string
	Reason         string
	MachineID      string // machine downtime
	MechanicNo     string // machine downtime: pre-selected mechanic, optional
	CurrentStyleID string // changeover
	NextStyleID    string // changeover
	ChangeTarget   int    // changeover
}

// Submit opens a downtime record in state open.
func Submit(db *gorm.DB, opts SubmitOpts) (*models.DowntimeRecord, error) {
	if opts.SessionID == "" {
		return nil, fmt.Errorf("downtime: sessionID is required")
	}
	if opts.LineID == "" {
		return nil, fmt.Errorf("downtime: lineID is required")
	}

	switch opts.Category {
	case models.DowntimeMachine:
		if opts.MachineID == "" {
			return nil, fmt.Errorf("downtime: machineID is required for machine downtime")
		}
	case models.DowntimeChangeover:
		if opts.CurrentStyleID == "" || opts.NextStyleID == "" {
			return nil, fmt.Errorf("downtime: current and next style are required for changeover")
		}
	case models.DowntimeSupply, models.DowntimeGeneric:
		if opts.Reason == "" {
			return nil, fmt.Errorf("downtime: reason is required")
		}
	default:
		return nil, fmt.Errorf("downtime: unknown category %q", opts.Category)
	}

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	rec := models.DowntimeRecord{
		ID:             id,
		SessionID:      opts.SessionID,
		LineID:         opts.LineID,
		Category:       opts.Category,
		Status:         models.DowntimeOpen,
		Reason:         opts.Reason,
		MachineID:      opts.MachineID,
		MechanicNo:     opts.MechanicNo,
		CurrentStyleID: opts.CurrentStyleID,
		NextStyleID:    opts.NextStyleID,
		ChangeTarget:   opts.ChangeTarget,
		StartedAt:      time.Now(),
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("downtime: submit %s on %s: %w", opts.Category, opts.SessionID, err)
	}
	return &rec, nil
}

// Get loads a downtime record with its checklist steps.
func Get(db *gorm.DB, id string) (*models.DowntimeRecord, error) {
	var rec models.DowntimeRecord
	if err := db.Preload("Steps").Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("downtime: get %s: %w", id, err)
	}
	return &rec, nil
}

// ListOpen returns the open downtime records of a session, oldest first.
func ListOpen(db *gorm.DB, sessionID string) ([]models.DowntimeRecord, error) {
	var recs []models.DowntimeRecord
	if err := db.Where("session_id = ? AND status = ?", sessionID, models.DowntimeOpen).
		Order("started_at ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("downtime: list open for %s: %w", sessionID, err)
	}
	return recs, nil
}

// Acknowledge records a mechanic's acknowledgement of a machine downtime.
// The mechanic must verify as themselves: when the record names a mechanic,
// only that employee number passes. No state changes when the gate fails.
func Acknowledge(db *gorm.DB, gate *verify.Gate, id, mechanicNo, credential string) (*models.DowntimeRecord, error) {
	rec, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if rec.Category != models.DowntimeMachine {
		return nil, fmt.Errorf("%w: acknowledge on %s", ErrNotCommandable, rec.Category)
	}
	if rec.Status != models.DowntimeOpen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}
	if rec.Acknowledged {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAcknowledged, id)
	}
	if rec.MechanicNo != "" && rec.MechanicNo != mechanicNo {
		return nil, fmt.Errorf("%w: mechanic mismatch", verify.ErrFailed)
	}
	if !gate.Verify(models.RoleMechanic, mechanicNo, credential) {
		return nil, fmt.Errorf("%w: mechanic %s", verify.ErrFailed, mechanicNo)
	}

	result := db.Model(&models.DowntimeRecord{}).
		Where("id = ? AND acknowledged = ?", id, false).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_by": mechanicNo,
			"mechanic_no":     mechanicNo,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("downtime: acknowledge %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAcknowledged, id)
	}

	rec.Acknowledged = true
	rec.AcknowledgedBy = mechanicNo
	rec.MechanicNo = mechanicNo
	return rec, nil
}

// Resolve closes a downtime record under supervisor sign-off. Machine
// downtime cannot close while unacknowledged; changeovers close only
// through their checklist (or the owning session ending).
func Resolve(db *gorm.DB, gate *verify.Gate, id, supervisorNo, credential string) (*models.DowntimeRecord, error) {
	rec, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if rec.Category == models.DowntimeChangeover {
		return nil, fmt.Errorf("%w: resolve on %s", ErrNotCommandable, rec.Category)
	}
	if rec.Status != models.DowntimeOpen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}
	if rec.Category == models.DowntimeMachine && !rec.Acknowledged {
		return nil, fmt.Errorf("%w: %s", ErrNotAcknowledged, id)
	}
	if !gate.Verify(models.RoleSupervisor, supervisorNo, credential) {
		return nil, fmt.Errorf("%w: supervisor %s", verify.ErrFailed, supervisorNo)
	}

	now := time.Now()
	result := db.Model(&models.DowntimeRecord{}).
		Where("id = ? AND status = ?", id, models.DowntimeOpen).
		Updates(map[string]interface{}{
			"status":      models.DowntimeClosed,
			"resolved_by": supervisorNo,
			"ended_at":    now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("downtime: resolve %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}

	rec.Status = models.DowntimeClosed
	rec.ResolvedBy = supervisorNo
	rec.EndedAt = &now
	return rec, nil
}

// CompleteStep marks one changeover checklist step complete. The QC
// approval step needs a QC sign-off, the rest a supervisor. When the last
// step lands the record closes in the same transaction: completion is
// derived from the checklist, never commanded.
func CompleteStep(db *gorm.DB, gate *verify.Gate, id, step, actorNo, credential string) (*models.DowntimeRecord, error) {
	if !knownStep(step) {
		return nil, fmt.Errorf("downtime: unknown checklist step %q", step)
	}

	rec, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if rec.Category != models.DowntimeChangeover {
		return nil, fmt.Errorf("%w: checklist on %s", ErrNotCommandable, rec.Category)
	}
	if rec.Status != models.DowntimeOpen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}
	for _, done := range rec.Steps {
		if done.Step == step {
			return nil, fmt.Errorf("%w: %s/%s", ErrStepAlreadyComplete, id, step)
		}
	}

	role := models.RoleSupervisor
	if step == models.StepQCApproval {
		role = models.RoleQC
	}
	if !gate.Verify(role, actorNo, credential) {
		return nil, fmt.Errorf("%w: %s %s", verify.ErrFailed, role, actorNo)
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		row := models.ChangeoverStep{
			DowntimeID:  id,
			Step:        step,
			CompletedBy: actorNo,
			CompletedAt: now,
		}
		// The unique (downtime, step) index turns a concurrent duplicate
		// completion into a constraint error here.
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("%w: %s/%s", ErrStepAlreadyComplete, id, step)
		}
		rec.Steps = append(rec.Steps, row)

		if !allStepsComplete(rec.Steps) {
			return nil
		}
		result := tx.Model(&models.DowntimeRecord{}).
			Where("id = ? AND status = ?", id, models.DowntimeOpen).
			Updates(map[string]interface{}{
				"status":   models.DowntimeClosed,
				"ended_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("downtime: auto-close %s: %w", id, result.Error)
		}
		if result.RowsAffected > 0 {
			rec.Status = models.DowntimeClosed
			rec.EndedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// allStepsComplete reports whether every checklist step has a completion
// row. Single source of the derived-close decision.
func allStepsComplete(steps []models.ChangeoverStep) bool {
	done := make(map[string]bool, len(steps))
	for _, s := range steps {
		done[s.Step] = true
	}
	for _, required := range ChecklistSteps {
		if !done[required] {
			return false
		}
	}
	return true
}

func knownStep(step string) bool {
	for _, s := range ChecklistSteps {
		if s == step {
			return true
		}
	}
	return false
}
