package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanStatus is shared by glow plans and fitness items.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusPaused    PlanStatus = "PAUSED"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusArchived  PlanStatus = "ARCHIVED"
)

type GlowPlan struct {
	gorm.Model

	UserID          uint       `gorm:"not null;index"`
	Name            string     `gorm:"not null"`
	Description     string     `gorm:"type:text"`
	StartDate       time.Time  `gorm:"not null"`
	Status          PlanStatus `gorm:"type:varchar(20);default:'ACTIVE';not null"`
	LastCompletedAt *time.Time

	// Relationships
	User      User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Areas     []GlowArea     `gorm:"many2many:glow_plan_areas;"`
	Devices   []GlowDevice   `gorm:"many2many:glow_plan_devices;"`
	Histories []GlowHistory  `gorm:"foreignKey:PlanID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Reminders []GlowReminder `gorm:"foreignKey:PlanID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
