package models

import "time"

// Line is a production line on the factory floor. Reference data owned by
// the registry; the engine only reads it.
type Line struct {
	ID        string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"size:64;not null"`
	Location  string `gorm:"size:64"`
	Active    bool   `gorm:"default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Style is a garment style with its order quantity. The running balance of a
// session is computed against OrderQuantity.
type Style struct {
	ID            string `gorm:"primaryKey;size:32"`
	Number        string `gorm:"size:64;not null;index"`
	Description   string `gorm:"type:text"`
	OrderQuantity int    `gorm:"default:0"`
	Active        bool   `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
