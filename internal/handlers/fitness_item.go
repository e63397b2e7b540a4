package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/services"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FitnessItemHandler struct {
	db       *gorm.DB
	logger   *zap.Logger
	notifier *services.Notifier
}

func NewFitnessItemHandler(db *gorm.DB, logger *zap.Logger, notifier *services.Notifier) *FitnessItemHandler {
	return &FitnessItemHandler{db: db, logger: logger, notifier: notifier}
}

type FitnessItemRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Description     string `json:"description" binding:"omitempty,max=500"`
	PlannedDuration *int   `json:"plannedDuration" binding:"omitempty,min=1,max=600"`
	PlannedSets     *int   `json:"plannedSets" binding:"omitempty,min=1,max=100"`
	PlannedReps     *int   `json:"plannedReps" binding:"omitempty,min=1,max=1000"`
	Status          string `json:"status" binding:"omitempty,oneof=ACTIVE PAUSED COMPLETED ARCHIVED"`
	VideoIDs        []uint `json:"videoIds"`
}

type FitnessItemListQuery struct {
	types.PageQuery
	Status  string `form:"status" binding:"omitempty,oneof=ACTIVE PAUSED COMPLETED ARCHIVED"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

type CompleteItemRequest struct {
	Duration *int   `json:"duration" binding:"omitempty,min=1,max=600"`
	Sets     *int   `json:"sets" binding:"omitempty,min=1,max=100"`
	Reps     *int   `json:"reps" binding:"omitempty,min=1,max=1000"`
	Notes    string `json:"notes" binding:"omitempty,max=500"`
}

func (h *FitnessItemHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var req FitnessItemRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	videos, err := h.resolveVideos(userID, req.VideoIDs)

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, err.Error())
		return
	}

	item := models.FitnessItem{
		UserID:          userID,
		Name:            req.Name,
		Description:     req.Description,
		PlannedDuration: req.PlannedDuration,
		PlannedSets:     req.PlannedSets,
		PlannedReps:     req.PlannedReps,
		Status:          models.PlanStatusActive,
		Videos:          videos,
	}

	if req.Status != "" {
		item.Status = models.PlanStatus(req.Status)
	}

	if err := h.db.Create(&item).Error; err != nil {
		h.logger.Error("fitness_item_create_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.Created(ctx, item)
}

func (h *FitnessItemHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query FitnessItemListQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Model(&models.FitnessItem{}).Where("user_id = ?", userID)

	if query.Status != "" {
		scope = scope.Where("status = ?", query.Status)
	}
	if query.Keyword != "" {
		scope = scope.Where("name LIKE ?", "%"+query.Keyword+"%")
	}

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("fitness_item_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	items := make([]models.FitnessItem, 0)

	if err := scope.Preload("Videos").
		Order("created_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&items).Error; err != nil {
		h.logger.Error("fitness_item_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      items,
		Pagination: types.NewPagination(query.PageQuery, total),
	})
}

func (h *FitnessItemHandler) Get(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	itemID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的项目ID")
		return
	}

	var item models.FitnessItem

	if err := h.db.Preload("Videos").
		Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "项目不存在")
		} else {
			h.logger.Error("fitness_item_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	types.OK(ctx, item)
}

func (h *FitnessItemHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	itemID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的项目ID")
		return
	}

	var req FitnessItemRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var item models.FitnessItem

	if err := h.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "项目不存在")
		} else {
			h.logger.Error("fitness_item_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	videos, err := h.resolveVideos(userID, req.VideoIDs)

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, err.Error())
		return
	}

	item.Name = req.Name
	item.Description = req.Description
	item.PlannedDuration = req.PlannedDuration
	item.PlannedSets = req.PlannedSets
	item.PlannedReps = req.PlannedReps

	if req.Status != "" {
		item.Status = models.PlanStatus(req.Status)
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return tx.Model(&item).Association("Videos").Replace(videos)
	})

	if err != nil {
		h.logger.Error("fitness_item_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	item.Videos = videos

	types.OK(ctx, item)
}

func (h *FitnessItemHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	itemID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的项目ID")
		return
	}

	var item models.FitnessItem

	if err := h.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "项目不存在")
		} else {
			h.logger.Error("fitness_item_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&item).Association("Videos").Clear(); err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.FitnessReminder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})

	if err != nil {
		h.logger.Error("fitness_item_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}

// Complete mirrors the glow plan completion recorder: one transaction, an
// active-status conditional update, one history row, one notification.
func (h *FitnessItemHandler) Complete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	itemID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的项目ID")
		return
	}

	var req CompleteItemRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var item models.FitnessItem

	if err := h.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "项目不存在")
		} else {
			h.logger.Error("fitness_item_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	now := time.Now()

	var history models.FitnessHistory
	var notification *models.Notification

	err = h.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.FitnessItem{}).
			Where("id = ? AND user_id = ? AND status = ?", itemID, userID, models.PlanStatusActive).
			Update("updated_at", now)

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return errPlanNotActive
		}

		history = models.FitnessHistory{
			ItemID:      item.ID,
			UserID:      userID,
			Duration:    req.Duration,
			Sets:        req.Sets,
			Reps:        req.Reps,
			Notes:       req.Notes,
			CompletedAt: now,
		}

		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		notification, err = h.notifier.Create(tx, userID, models.NotificationAchievement,
			"打卡成功", "「"+item.Name+"」已完成一次训练", &history.ID, "fitness_history")
		return err
	})

	if err != nil {
		if errors.Is(err, errPlanNotActive) {
			types.Fail(ctx, http.StatusBadRequest, "只有进行中的项目才能打卡")
			return
		}
		h.logger.Error("fitness_item_complete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	h.notifier.Dispatch(notification)

	types.Created(ctx, gin.H{"history": history, "notification": notification})
}

func (h *FitnessItemHandler) resolveVideos(userID uint, videoIDs []uint) ([]models.UserVideo, error) {
	videos := make([]models.UserVideo, 0)

	if len(videoIDs) == 0 {
		return videos, nil
	}

	if err := h.db.Where("user_id = ? AND id IN ?", userID, videoIDs).Find(&videos).Error; err != nil {
		return nil, errors.New("查询视频失败")
	}

	if len(videos) != len(uniqueIDs(videoIDs)) {
		return nil, errors.New("包含不存在的视频")
	}

	return videos, nil
}
