package models

import "time"

// Downtime categories.
const (
	DowntimeMachine    = "machine"
	DowntimeChangeover = "changeover"
	DowntimeSupply     = "supply"
	DowntimeGeneric    = "generic"
)

// Downtime statuses.
const (
	DowntimeOpen   = "open"
	DowntimeClosed = "closed"
)

// Changeover checklist step names.
const (
	StepMachineSetup    = "machine_setup"
	StepPeopleAllocated = "people_allocated"
	StepFirstUnitOff    = "first_unit_off"
	StepQCApproval      = "qc_approval"
)

// DowntimeRecord tracks one in-shift stoppage. Category-specific fields are
// sparse: machine downtime carries MachineID/MechanicNo, changeovers carry
// the style pair and checklist rows, supply/generic carry only Reason.
// Never deleted; ending the owning session closes any record still open.
type DowntimeRecord struct {
	ID             string `gorm:"primaryKey;size:32"`
	SessionID      string `gorm:"size:32;not null;index"`
	LineID         string `gorm:"size:32;not null;index"`
	Category       string `gorm:"size:16;not null;index"`
	Status         string `gorm:"size:16;default:open;index"`
	Reason         string `gorm:"type:text"`
	MachineID      string `gorm:"size:32"`
	MechanicNo     string `gorm:"size:32"`
	Acknowledged   bool   `gorm:"default:false"`
	AcknowledgedBy string `gorm:"size:32"`
	ResolvedBy     string `gorm:"size:32"`
	CurrentStyleID string `gorm:"size:32"`
	NextStyleID    string `gorm:"size:32"`
	ChangeTarget   int
	StartedAt      time.Time
	EndedAt        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Steps []ChangeoverStep `gorm:"foreignKey:DowntimeID"`
}

// ChangeoverStep is one completed checklist step of a style changeover.
// A step exists only once completed; the composite unique index makes
// re-completion a constraint violation even under a stale-UI race.
type ChangeoverStep struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	DowntimeID  string `gorm:"size:32;not null;uniqueIndex:idx_downtime_step"`
	Step        string `gorm:"size:32;not null;uniqueIndex:idx_downtime_step"`
	CompletedBy string `gorm:"size:32;not null"`
	CompletedAt time.Time
}
