package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GlowHistoryHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGlowHistoryHandler(db *gorm.DB, logger *zap.Logger) *GlowHistoryHandler {
	return &GlowHistoryHandler{db: db, logger: logger}
}

type HistoryListQuery struct {
	types.PageQuery
	PlanID uint   `form:"planId"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// HistoryStats is computed with the same filters as the list query, so the
// numbers always describe the returned set.
type HistoryStats struct {
	TotalCount    int64   `json:"totalCount"`
	TotalDuration int64   `json:"totalDuration"`
	AvgDuration   float64 `json:"avgDuration"`
}

func (h *GlowHistoryHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query HistoryListQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := historyScope(h.db.Model(&models.GlowHistory{}), userID, query, "plan_id")

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("glow_history_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	histories := make([]models.GlowHistory, 0)

	if err := scope.Preload("Areas").Preload("Devices").
		Order("completed_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&histories).Error; err != nil {
		h.logger.Error("glow_history_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	stats, err := aggregateDuration(historyScope(h.db.Model(&models.GlowHistory{}), userID, query, "plan_id"))

	if err != nil {
		h.logger.Error("glow_history_stats_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      histories,
		Pagination: types.NewPagination(query.PageQuery, total),
		Stats:      stats,
	})
}

func (h *GlowHistoryHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	historyID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的记录ID")
		return
	}

	var history models.GlowHistory

	if err := h.db.Where("id = ? AND user_id = ?", historyID, userID).First(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "记录不存在")
		} else {
			h.logger.Error("glow_history_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&history).Association("Areas").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&history).Association("Devices").Clear(); err != nil {
			return err
		}
		return tx.Delete(&history).Error
	})

	if err != nil {
		h.logger.Error("glow_history_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}

// historyScope applies owner and filter clauses shared by the list query,
// the stats query and the export query. ownerColumn is "plan_id" for glow
// history and "item_id" for fitness history.
func historyScope(scope *gorm.DB, userID uint, query HistoryListQuery, ownerColumn string) *gorm.DB {
	scope = scope.Where("user_id = ?", userID)

	if query.PlanID != 0 {
		scope = scope.Where(ownerColumn+" = ?", query.PlanID)
	}
	if query.From != "" {
		from, _ := time.Parse("2006-01-02", query.From)
		scope = scope.Where("completed_at >= ?", from)
	}
	if query.To != "" {
		to, _ := time.Parse("2006-01-02", query.To)
		scope = scope.Where("completed_at < ?", to.AddDate(0, 0, 1))
	}

	return scope
}

func aggregateDuration(scope *gorm.DB) (HistoryStats, error) {
	var row struct {
		TotalCount    int64
		TotalDuration *int64
		AvgDuration   *float64
	}

	err := scope.Select("COUNT(*) AS total_count, SUM(duration) AS total_duration, AVG(duration) AS avg_duration").
		Scan(&row).Error

	if err != nil {
		return HistoryStats{}, err
	}

	stats := HistoryStats{TotalCount: row.TotalCount}

	if row.TotalDuration != nil {
		stats.TotalDuration = *row.TotalDuration
	}
	if row.AvgDuration != nil {
		stats.AvgDuration = *row.AvgDuration
	}

	return stats, nil
}
