package models

import "gorm.io/gorm"

// UserVideo is an uploaded exercise video stored on local disk. The row keeps
// both the storage path (for deletion) and the public URL (for playback).
type UserVideo struct {
	gorm.Model

	UserID       uint   `gorm:"not null;index"`
	Filename     string `gorm:"not null"`
	OriginalName string `gorm:"not null"`
	Path         string `gorm:"not null"`
	URL          string `gorm:"not null"`
	Size         int64  `gorm:"not null"`
	MimeType     string `gorm:"not null"`

	// Relationships
	User  User          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Items []FitnessItem `gorm:"many2many:fitness_item_videos;" json:"-"`
}
