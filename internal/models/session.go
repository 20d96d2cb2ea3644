package models

import "time"

// Session is one open shift on one production line. At most one session per
// line may be active at a time: ActiveLine mirrors LineID while the session
// is open and is nulled on close, so the unique index turns a two-terminal
// start race into a constraint violation instead of two open sessions.
type Session struct {
	ID           string  `gorm:"primaryKey;size:32"`
	LineID       string  `gorm:"size:32;not null;index"`
	ActiveLine   *string `gorm:"size:32;uniqueIndex"`
	SupervisorID string  `gorm:"size:32;not null"`
	StyleID      string  `gorm:"size:32;not null"`
	TimeTableID  string  `gorm:"size:32;not null"`
	HourlyTarget int     `gorm:"not null"`
	Active       bool    `gorm:"default:true;index"`
	StartedAt    time.Time
	EndedAt      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Line      Line      `gorm:"foreignKey:LineID"`
	Style     Style     `gorm:"foreignKey:StyleID"`
	TimeTable TimeTable `gorm:"foreignKey:TimeTableID"`
}

// ProductionRecord is one posted quantity against a slot within a session.
// Append-only: a slot's output is the sum of Units over its records, never
// an updated counter. Disposed rejects flagged as produced append a
// negative-unit adjustment rather than rewriting history.
type ProductionRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"size:32;not null;index:idx_session_slot"`
	SlotID    string `gorm:"size:32;not null;index:idx_session_slot"`
	Units     int    `gorm:"default:1"`
	Note      string `gorm:"size:128"`
	CreatedAt time.Time
}
