package services

import (
	"fmt"

	"github.com/glowfit-dev/glowfit/internal/cache"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/ws"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier creates notification rows and delivers their post-commit side
// effects: live push over websocket and dashboard cache invalidation.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Create inserts a notification inside the caller's transaction, so a
// failed completion never leaves a notification behind (and vice versa).
func (n *Notifier) Create(tx *gorm.DB, userID uint, typ models.NotificationType, title, content string, relatedID *uint, relatedType string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Content:     content,
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}

	if err := tx.Create(&notification).Error; err != nil {
		return nil, err
	}

	return &notification, nil
}

// Dispatch runs after the surrounding transaction has committed.
func (n *Notifier) Dispatch(notification *models.Notification) {
	ws.Push(n.logger, notification.UserID, map[string]any{
		"type":         "notification",
		"notification": notification,
	})

	if err := cache.Delete(DashboardCacheKey(notification.UserID)); err != nil {
		n.logger.Warn("dashboard_cache_invalidate_failed", zap.Error(err))
	}
}

func DashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:%d", userID)
}
