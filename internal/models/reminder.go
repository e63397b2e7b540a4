package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReminderFrequency string

const (
	FrequencyDaily  ReminderFrequency = "DAILY"
	FrequencyWeekly ReminderFrequency = "WEEKLY"
	FrequencyCustom ReminderFrequency = "CUSTOM"
)

// GlowReminder schedules notifications for one glow plan. Weekdays is a JSON
// array of time.Weekday values (0 = Sunday) and only applies to WEEKLY;
// Interval is in days and only applies to CUSTOM. NextReminder only ever
// moves forward: the dispatcher advances it with a conditional update.
type GlowReminder struct {
	gorm.Model

	PlanID       uint              `gorm:"not null;index"`
	UserID       uint              `gorm:"not null;index"`
	Frequency    ReminderFrequency `gorm:"type:varchar(20);not null"`
	Interval     int               `gorm:"default:1"`
	Time         string            `gorm:"type:varchar(5);not null"`
	Weekdays     datatypes.JSON
	NextReminder time.Time `gorm:"not null;index"`
	IsActive     bool      `gorm:"default:true"`

	// Relationships
	Plan GlowPlan `gorm:"foreignKey:PlanID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// FitnessReminder is the fitness-side counterpart of GlowReminder.
type FitnessReminder struct {
	gorm.Model

	ItemID       uint              `gorm:"not null;index"`
	UserID       uint              `gorm:"not null;index"`
	Frequency    ReminderFrequency `gorm:"type:varchar(20);not null"`
	Interval     int               `gorm:"default:1"`
	Time         string            `gorm:"type:varchar(5);not null"`
	Weekdays     datatypes.JSON
	NextReminder time.Time `gorm:"not null;index"`
	IsActive     bool      `gorm:"default:true"`

	// Relationships
	Item FitnessItem `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User User        `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
