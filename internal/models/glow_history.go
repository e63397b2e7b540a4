package models

import (
	"time"

	"gorm.io/gorm"
)

// GlowHistory is an immutable record of one completed occurrence of a plan.
// The areas/devices joins snapshot what was used at completion time, so later
// edits to the plan do not rewrite history.
type GlowHistory struct {
	gorm.Model

	PlanID      uint `gorm:"not null;index"`
	UserID      uint `gorm:"not null;index"`
	Duration    *int
	Notes       string    `gorm:"type:text"`
	CompletedAt time.Time `gorm:"not null;index"`

	// Relationships
	Plan    GlowPlan     `gorm:"foreignKey:PlanID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Areas   []GlowArea   `gorm:"many2many:glow_history_areas;"`
	Devices []GlowDevice `gorm:"many2many:glow_history_devices;"`
}
