package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FitnessHistoryHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewFitnessHistoryHandler(db *gorm.DB, logger *zap.Logger) *FitnessHistoryHandler {
	return &FitnessHistoryHandler{db: db, logger: logger}
}

type FitnessHistoryListQuery struct {
	types.PageQuery
	ItemID uint   `form:"itemId"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (h *FitnessHistoryHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query FitnessHistoryListQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	shared := HistoryListQuery{PageQuery: query.PageQuery, PlanID: query.ItemID, From: query.From, To: query.To}

	scope := historyScope(h.db.Model(&models.FitnessHistory{}), userID, shared, "item_id")

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("fitness_history_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	histories := make([]models.FitnessHistory, 0)

	if err := scope.Order("completed_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&histories).Error; err != nil {
		h.logger.Error("fitness_history_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	stats, err := aggregateDuration(historyScope(h.db.Model(&models.FitnessHistory{}), userID, shared, "item_id"))

	if err != nil {
		h.logger.Error("fitness_history_stats_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      histories,
		Pagination: types.NewPagination(query.PageQuery, total),
		Stats:      stats,
	})
}

func (h *FitnessHistoryHandler) Delete(ctx *gin.Context) {
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

	var history models.FitnessHistory

	if err := h.db.Where("id = ? AND user_id = ?", historyID, userID).First(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "记录不存在")
		} else {
			h.logger.Error("fitness_history_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	if err := h.db.Delete(&history).Error; err != nil {
		h.logger.Error("fitness_history_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}
