package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/cache"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/services"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewNotificationHandler(db *gorm.DB, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{db: db, logger: logger}
}

type NotificationListQuery struct {
	types.PageQuery
	UnreadOnly bool `form:"unreadOnly"`
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query NotificationListQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if query.UnreadOnly {
		scope = scope.Where("is_read = ?", false)
	}

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("notification_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	var unreadCount int64

	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&unreadCount).Error; err != nil {
		h.logger.Error("notification_unread_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	notifications := make([]models.Notification, 0)

	if err := scope.Order("created_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&notifications).Error; err != nil {
		h.logger.Error("notification_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      notifications,
		Pagination: types.NewPagination(query.PageQuery, total),
		Stats:      gin.H{"unreadCount": unreadCount},
	})
}

func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	notificationID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的通知ID")
		return
	}

	result := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)

	if result.Error != nil {
		h.logger.Error("notification_mark_read_failed", zap.Error(result.Error))
		types.ServerError(ctx)
		return
	}

	if result.RowsAffected == 0 {
		types.NotFound(ctx, "通知不存在")
		return
	}

	h.invalidateDashboard(userID)
	types.OKMessage(ctx, "已标记为已读", nil)
}

func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	err = h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error

	if err != nil {
		h.logger.Error("notification_mark_all_read_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	h.invalidateDashboard(userID)
	types.OKMessage(ctx, "全部已读", nil)
}

func (h *NotificationHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	notificationID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的通知ID")
		return
	}

	result := h.db.Where("id = ? AND user_id = ?", notificationID, userID).Delete(&models.Notification{})

	if result.Error != nil {
		h.logger.Error("notification_delete_failed", zap.Error(result.Error))
		types.ServerError(ctx)
		return
	}

	if result.RowsAffected == 0 {
		types.NotFound(ctx, "通知不存在")
		return
	}

	h.invalidateDashboard(userID)
	types.OKMessage(ctx, "删除成功", nil)
}

func (h *NotificationHandler) invalidateDashboard(userID uint) {
	if err := cache.Delete(services.DashboardCacheKey(userID)); err != nil {
		h.logger.Warn("dashboard_cache_invalidate_failed", zap.Error(err))
	}
}
