package models

import "time"

// Personnel roles recognised by the verification gate.
const (
	RoleSupervisor = "supervisor"
	RoleMechanic   = "mechanic"
	RoleQC         = "qc"
)

// Personnel is a floor worker with sign-off authority. EmployeeNo is the
// business identifier operators type at the terminal; ID is internal.
// Credential is compared through a CredentialVerifier, never directly.
type Personnel struct {
	ID         string `gorm:"primaryKey;size:32"`
	Name       string `gorm:"size:64;not null"`
	Surname    string `gorm:"size:64"`
	EmployeeNo string `gorm:"size:32;not null;uniqueIndex"`
	Role       string `gorm:"size:16;not null;index"`
	Credential string `gorm:"size:128"`
	Active     bool   `gorm:"default:true;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
