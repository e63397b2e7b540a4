package models

import "gorm.io/gorm"

type NotificationType string

const (
	NotificationAchievement NotificationType = "ACHIEVEMENT"
	NotificationReminder    NotificationType = "REMINDER"
	NotificationSystem      NotificationType = "SYSTEM"
)

type Notification struct {
	gorm.Model

	UserID      uint             `gorm:"not null;index"`
	Type        NotificationType `gorm:"type:varchar(20);not null"`
	Title       string           `gorm:"not null"`
	Content     string           `gorm:"type:text"`
	IsRead      bool             `gorm:"default:false;index"`
	RelatedID   *uint
	RelatedType string

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
