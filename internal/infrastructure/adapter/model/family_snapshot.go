package model

import (
	"time"
)

// FamilySnapshot stores the encoded snapshot of one record family
type FamilySnapshot struct {
	Family    string    `gorm:"type:varchar(32);primaryKey"`
	Payload   []byte    `gorm:"type:bytea;not null"`
	Version   int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for the family snapshot model
func (FamilySnapshot) TableName() string {
	return "family_snapshots"
}
