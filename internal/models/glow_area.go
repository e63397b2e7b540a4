package models

import "gorm.io/gorm"

// GlowArea is a skincare target area (face, neck, ...) owned by one user.
// Names are unique per user; enforced by the handlers so the duplicate
// error can carry a friendly message.
type GlowArea struct {
	gorm.Model

	UserID      uint   `gorm:"not null;index:idx_glow_areas_user"`
	Name        string `gorm:"not null;index:idx_glow_areas_user"`
	Description string

	// Relationships
	User  User       `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Plans []GlowPlan `gorm:"many2many:glow_plan_areas;" json:"-"`
}
