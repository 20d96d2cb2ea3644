package models

import "time"

// TimeTable is an ordered, non-empty sequence of time slots describing a
// shift. Immutable once referenced by an active session; slot contiguity is
// the registry's responsibility, not enforced here.
type TimeTable struct {
	ID        string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"size:64;not null"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Slots []TimeSlot `gorm:"foreignKey:TimeTableID"`
}

// TimeSlot is one hour-ish interval of a time table. StartTime and EndTime
// are "HH:MM" local wall-clock strings; Position fixes the display and
// iteration order.
type TimeSlot struct {
	ID          string  `gorm:"primaryKey;size:32"`
	TimeTableID string  `gorm:"size:32;not null;index"`
	Position    int     `gorm:"not null"`
	StartTime   string  `gorm:"size:5;not null"`
	EndTime     string  `gorm:"size:5;not null"`
	BreakID     *string `gorm:"size:32"`

	Break *Break `gorm:"foreignKey:BreakID"`
}

// Break discounts a slot's target by its duration. Type is "meal" or "rest".
type Break struct {
	ID          string `gorm:"primaryKey;size:32"`
	Type        string `gorm:"size:16;default:rest"`
	DurationMin int    `gorm:"not null"`
}
