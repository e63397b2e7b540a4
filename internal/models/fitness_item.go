package models

import "gorm.io/gorm"

type FitnessItem struct {
	gorm.Model

	UserID          uint   `gorm:"not null;index"`
	Name            string `gorm:"not null"`
	Description     string `gorm:"type:text"`
	PlannedDuration *int
	PlannedSets     *int
	PlannedReps     *int
	Status          PlanStatus `gorm:"type:varchar(20);default:'ACTIVE';not null"`

	// Relationships
	User      User              `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Videos    []UserVideo       `gorm:"many2many:fitness_item_videos;"`
	Histories []FitnessHistory  `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Reminders []FitnessReminder `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
