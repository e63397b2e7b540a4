package models

import (
	"time"

	"gorm.io/gorm"
)

type FitnessHistory struct {
	gorm.Model

	ItemID      uint `gorm:"not null;index"`
	UserID      uint `gorm:"not null;index"`
	Duration    *int
	Sets        *int
	Reps        *int
	Notes       string    `gorm:"type:text"`
	CompletedAt time.Time `gorm:"not null;index"`

	// Relationships
	Item FitnessItem `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
