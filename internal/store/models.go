package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type CaseModel struct {
	ID          string `gorm:"primaryKey"`
	Date        string
	CaseID      string `gorm:"index"`
	Branch      string `gorm:"not null;index"`
	Brand       string
	ServiceType string
	Reason      string
	City        string
	Aging       int       `gorm:"not null"`
	Status      string    `gorm:"not null;index"`
	Remark      string
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type ImportJobModel struct {
	ID            string         `gorm:"primaryKey"`
	FileName      string         `gorm:"not null"`
	ActorRole     string         `gorm:"not null"`
	Accepted      int            `gorm:"not null"`
	Rejected      int            `gorm:"not null"`
	Failed        int            `gorm:"not null"`
	ColumnMapping datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"not null;index"`
}
