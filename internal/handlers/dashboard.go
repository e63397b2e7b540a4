package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/cache"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/services"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dashboardCacheTTL = 60 * time.Second

type DashboardHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDashboardHandler(db *gorm.DB, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{db: db, logger: logger}
}

type DashboardResponse struct {
	GlowPlans           CountSummary `json:"glowPlans"`
	FitnessItems        CountSummary `json:"fitnessItems"`
	UnreadNotifications int64        `json:"unreadNotifications"`
	ActiveReminders     struct {
		Glow    int64 `json:"glow"`
		Fitness int64 `json:"fitness"`
	} `json:"activeReminders"`
}

type CountSummary struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// Stats are independent count reads over the caller's rows; the short redis
// TTL keeps repeat dashboard loads off the database.
func (h *DashboardHandler) Stats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	cacheKey := services.DashboardCacheKey(userID)

	var cached DashboardResponse

	if err := cache.Get(cacheKey, &cached); err == nil {
		types.OK(ctx, cached)
		return
	}

	var response DashboardResponse

	counts := []struct {
		dest  *int64
		scope *gorm.DB
	}{
		{&response.GlowPlans.Total, h.db.Model(&models.GlowPlan{}).Where("user_id = ?", userID)},
		{&response.GlowPlans.Active, h.db.Model(&models.GlowPlan{}).Where("user_id = ? AND status = ?", userID, models.PlanStatusActive)},
		{&response.FitnessItems.Total, h.db.Model(&models.FitnessItem{}).Where("user_id = ?", userID)},
		{&response.FitnessItems.Active, h.db.Model(&models.FitnessItem{}).Where("user_id = ? AND status = ?", userID, models.PlanStatusActive)},
		{&response.UnreadNotifications, h.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false)},
		{&response.ActiveReminders.Glow, h.db.Model(&models.GlowReminder{}).Where("user_id = ? AND is_active = ?", userID, true)},
		{&response.ActiveReminders.Fitness, h.db.Model(&models.FitnessReminder{}).Where("user_id = ? AND is_active = ?", userID, true)},
	}

	for _, c := range counts {
		if err := c.scope.Count(c.dest).Error; err != nil {
			h.logger.Error("dashboard_count_failed", zap.Error(err))
			types.ServerError(ctx)
			return
		}
	}

	if err := cache.Set(cacheKey, response, dashboardCacheTTL); err != nil {
		h.logger.Warn("dashboard_cache_set_failed", zap.Error(err))
	}

	types.OK(ctx, response)
}
