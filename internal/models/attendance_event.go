package models

import "time"

// Attendance event kinds and statuses.
const (
	AttendanceLate   = "late"
	AttendanceAbsent = "absent"

	AttendanceOpen     = "open"
	AttendanceReturned = "returned"
	AttendanceLeft     = "left"
	AttendanceClosed   = "closed"
)

// AttendanceEvent records a late arrival or an absence within a session.
// A late record whose employee never returns is closed with status "left"
// and a new absent record is created — a record-creating transition, not a
// mutation of the late record's kind.
type AttendanceEvent struct {
	ID         string `gorm:"primaryKey;size:32"`
	SessionID  string `gorm:"size:32;not null;index"`
	Kind       string `gorm:"size:16;not null;index"`
	EmployeeID string `gorm:"size:32;not null"`
	Reason     string `gorm:"size:128"`
	Status     string `gorm:"size:16;default:open;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
