package models

import "time"

// Quality event kinds and statuses.
const (
	QualityReject = "reject"
	QualityRework = "rework"

	QualityOpen    = "open"
	QualityPerfect = "perfect"
	QualityClosed  = "closed"
)

// QualityEvent is a QC-attested reject or rework record. SubmittedBy is the
// employee number of the QC who attested the submission; DisposedBy the QC
// who signed the disposition. RecordedAsProduced marks rejects whose units
// were already posted as output and must be backed out when confirmed.
type QualityEvent struct {
	ID                 string `gorm:"primaryKey;size:32"`
	SessionID          string `gorm:"size:32;not null;index"`
	Kind               string `gorm:"size:16;not null;index"`
	Reason             string `gorm:"size:128;not null"`
	Operation          string `gorm:"size:64"`
	Count              int    `gorm:"default:1"`
	Comments           string `gorm:"type:text"`
	SlotID             string `gorm:"size:32"`
	RecordedAsProduced bool   `gorm:"default:false"`
	SubmittedBy        string `gorm:"size:32;not null"`
	DisposedBy         string `gorm:"size:32"`
	Status             string `gorm:"size:16;default:open;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
