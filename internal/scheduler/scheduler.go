package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/services"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scheduler consumes due reminders: it advances NextReminder and writes a
// REMINDER notification in one transaction. The advance is a conditional
// update keyed on the old NextReminder value, so a reminder fires once even
// with several processes polling — and NextReminder only ever moves forward.
type Scheduler struct {
	db       *gorm.DB
	logger   *zap.Logger
	notifier *services.Notifier
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(db *gorm.DB, logger *zap.Logger, notifier *services.Notifier, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		db:       db,
		logger:   logger,
		notifier: notifier,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("scheduler_started", zap.Duration("interval", s.interval))

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.DispatchDue(time.Now())
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
	s.logger.Info("scheduler_stopped")
}

// DispatchDue processes every active reminder whose NextReminder has
// passed. Exported so tests can drive the loop directly.
func (s *Scheduler) DispatchDue(now time.Time) {
	var glowReminders []models.GlowReminder

	if err := s.db.Preload("Plan").
		Where("is_active = ? AND next_reminder <= ?", true, now).
		Find(&glowReminders).Error; err != nil {
		s.logger.Error("glow_reminders_query_failed", zap.Error(err))
	} else {
		for _, reminder := range glowReminders {
			s.fireGlow(reminder, now)
		}
	}

	var fitnessReminders []models.FitnessReminder

	if err := s.db.Preload("Item").
		Where("is_active = ? AND next_reminder <= ?", true, now).
		Find(&fitnessReminders).Error; err != nil {
		s.logger.Error("fitness_reminders_query_failed", zap.Error(err))
	} else {
		for _, reminder := range fitnessReminders {
			s.fireFitness(reminder, now)
		}
	}
}

func (s *Scheduler) fireGlow(reminder models.GlowReminder, now time.Time) {
	next, err := nextFor(reminder.Frequency, reminder.Interval, reminder.Time, []byte(reminder.Weekdays), now)

	if err != nil {
		s.logger.Error("glow_reminder_next_failed", zap.Uint("reminder_id", reminder.ID), zap.Error(err))
		return
	}

	var notification *models.Notification

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.GlowReminder{}).
			Where("id = ? AND next_reminder = ?", reminder.ID, reminder.NextReminder).
			Update("next_reminder", next)

		if result.Error != nil {
			return result.Error
		}

		// Another poller already consumed this occurrence.
		if result.RowsAffected == 0 {
			return nil
		}

		notification, err = s.notifier.Create(tx, reminder.UserID, models.NotificationReminder,
			"护肤提醒", "该进行「"+reminder.Plan.Name+"」了", &reminder.PlanID, "glow_plan")
		return err
	})

	if err != nil {
		s.logger.Error("glow_reminder_fire_failed", zap.Uint("reminder_id", reminder.ID), zap.Error(err))
		return
	}

	if notification != nil {
		s.notifier.Dispatch(notification)
	}
}

func (s *Scheduler) fireFitness(reminder models.FitnessReminder, now time.Time) {
	next, err := nextFor(reminder.Frequency, reminder.Interval, reminder.Time, []byte(reminder.Weekdays), now)

	if err != nil {
		s.logger.Error("fitness_reminder_next_failed", zap.Uint("reminder_id", reminder.ID), zap.Error(err))
		return
	}

	var notification *models.Notification

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.FitnessReminder{}).
			Where("id = ? AND next_reminder = ?", reminder.ID, reminder.NextReminder).
			Update("next_reminder", next)

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return nil
		}

		notification, err = s.notifier.Create(tx, reminder.UserID, models.NotificationReminder,
			"训练提醒", "该进行「"+reminder.Item.Name+"」了", &reminder.ItemID, "fitness_item")
		return err
	})

	if err != nil {
		s.logger.Error("fitness_reminder_fire_failed", zap.Uint("reminder_id", reminder.ID), zap.Error(err))
		return
	}

	if notification != nil {
		s.notifier.Dispatch(notification)
	}
}

func nextFor(frequency models.ReminderFrequency, interval int, clock string, weekdaysJSON []byte, now time.Time) (time.Time, error) {
	var weekdays []int

	if len(weekdaysJSON) > 0 {
		if err := json.Unmarshal(weekdaysJSON, &weekdays); err != nil {
			return time.Time{}, err
		}
	}

	return utils.NextOccurrence(frequency, interval, clock, weekdays, now)
}
