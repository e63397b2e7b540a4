package models

import "gorm.io/gorm"

// GlowDevice is a skincare device (LED mask, roller, ...) owned by one user.
type GlowDevice struct {
	gorm.Model

	UserID      uint   `gorm:"not null;index:idx_glow_devices_user"`
	Name        string `gorm:"not null;index:idx_glow_devices_user"`
	DeviceModel string
	Description string

	// Relationships
	User  User       `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Plans []GlowPlan `gorm:"many2many:glow_plan_devices;" json:"-"`
}
