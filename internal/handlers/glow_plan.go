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

type GlowPlanHandler struct {
	db       *gorm.DB
	logger   *zap.Logger
	notifier *services.Notifier
}

func NewGlowPlanHandler(db *gorm.DB, logger *zap.Logger, notifier *services.Notifier) *GlowPlanHandler {
	return &GlowPlanHandler{db: db, logger: logger, notifier: notifier}
}

type GlowPlanRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	StartDate   string `json:"startDate" binding:"required,datetime=2006-01-02"`
	Status      string `json:"status" binding:"omitempty,oneof=ACTIVE PAUSED COMPLETED ARCHIVED"`
	AreaIDs     []uint `json:"areaIds"`
	DeviceIDs   []uint `json:"deviceIds"`
}

type GlowPlanListQuery struct {
	types.PageQuery
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE PAUSED COMPLETED ARCHIVED"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

type CompletePlanRequest struct {
	Duration  *int   `json:"duration" binding:"omitempty,min=1,max=600"`
	Notes     string `json:"notes" binding:"omitempty,max=500"`
	AreaIDs   []uint `json:"areaIds"`
	DeviceIDs []uint `json:"deviceIds"`
}

func (h *GlowPlanHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var req GlowPlanRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)

	areas, devices, err := h.resolveRelations(userID, req.AreaIDs, req.DeviceIDs)

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, err.Error())
		return
	}

	plan := models.GlowPlan{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		Status:      models.PlanStatusActive,
		Areas:       areas,
		Devices:     devices,
	}

	if req.Status != "" {
		plan.Status = models.PlanStatus(req.Status)
	}

	if err := h.db.Create(&plan).Error; err != nil {
		h.logger.Error("glow_plan_create_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.Created(ctx, plan)
}

func (h *GlowPlanHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query GlowPlanListQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Model(&models.GlowPlan{}).Where("user_id = ?", userID)

	if query.Status != "" {
		scope = scope.Where("status = ?", query.Status)
	}
	if query.From != "" {
		from, _ := time.Parse("2006-01-02", query.From)
		scope = scope.Where("start_date >= ?", from)
	}
	if query.To != "" {
		to, _ := time.Parse("2006-01-02", query.To)
		scope = scope.Where("start_date < ?", to.AddDate(0, 0, 1))
	}

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("glow_plan_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	plans := make([]models.GlowPlan, 0)

	if err := scope.Preload("Areas").Preload("Devices").
		Order("created_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&plans).Error; err != nil {
		h.logger.Error("glow_plan_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      plans,
		Pagination: types.NewPagination(query.PageQuery, total),
	})
}

func (h *GlowPlanHandler) Get(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	planID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var plan models.GlowPlan

	if err := h.db.Preload("Areas").Preload("Devices").
		Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "计划不存在")
		} else {
			h.logger.Error("glow_plan_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	types.OK(ctx, plan)
}

func (h *GlowPlanHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	planID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var req GlowPlanRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var plan models.GlowPlan

	if err := h.db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "计划不存在")
		} else {
			h.logger.Error("glow_plan_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	areas, devices, err := h.resolveRelations(userID, req.AreaIDs, req.DeviceIDs)

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, err.Error())
		return
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)

	plan.Name = req.Name
	plan.Description = req.Description
	plan.StartDate = startDate

	if req.Status != "" {
		plan.Status = models.PlanStatus(req.Status)
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}
		if err := tx.Model(&plan).Association("Areas").Replace(areas); err != nil {
			return err
		}
		return tx.Model(&plan).Association("Devices").Replace(devices)
	})

	if err != nil {
		h.logger.Error("glow_plan_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	plan.Areas = areas
	plan.Devices = devices

	types.OK(ctx, plan)
}

func (h *GlowPlanHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	planID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var plan models.GlowPlan

	if err := h.db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "计划不存在")
		} else {
			h.logger.Error("glow_plan_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&plan).Association("Areas").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&plan).Association("Devices").Clear(); err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.GlowReminder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&plan).Error
	})

	if err != nil {
		h.logger.Error("glow_plan_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}

// Complete records one occurrence of an active plan. History and
// notification are written in one transaction; the active-status check is a
// conditional update so concurrent submissions cannot sneak past it.
func (h *GlowPlanHandler) Complete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	planID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var req CompletePlanRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var plan models.GlowPlan

	if err := h.db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "计划不存在")
		} else {
			h.logger.Error("glow_plan_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	areas, devices, err := h.resolveRelations(userID, req.AreaIDs, req.DeviceIDs)

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()

	var history models.GlowHistory
	var notification *models.Notification

	err = h.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.GlowPlan{}).
			Where("id = ? AND user_id = ? AND status = ?", planID, userID, models.PlanStatusActive).
			Update("last_completed_at", now)

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return errPlanNotActive
		}

		history = models.GlowHistory{
			PlanID:      plan.ID,
			UserID:      userID,
			Duration:    req.Duration,
			Notes:       req.Notes,
			CompletedAt: now,
			Areas:       areas,
			Devices:     devices,
		}

		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		notification, err = h.notifier.Create(tx, userID, models.NotificationAchievement,
			"打卡成功", "「"+plan.Name+"」已完成一次打卡", &history.ID, "glow_history")
		return err
	})

	if err != nil {
		if errors.Is(err, errPlanNotActive) {
			types.Fail(ctx, http.StatusBadRequest, "只有进行中的计划才能打卡")
			return
		}
		h.logger.Error("glow_plan_complete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	h.notifier.Dispatch(notification)

	types.Created(ctx, gin.H{"history": history, "notification": notification})
}

var errPlanNotActive = errors.New("plan is not active")

// resolveRelations loads the referenced areas/devices and confirms every one
// belongs to the caller.
func (h *GlowPlanHandler) resolveRelations(userID uint, areaIDs, deviceIDs []uint) ([]models.GlowArea, []models.GlowDevice, error) {
	areas := make([]models.GlowArea, 0)

	if len(areaIDs) > 0 {
		if err := h.db.Where("user_id = ? AND id IN ?", userID, areaIDs).Find(&areas).Error; err != nil {
			return nil, nil, errors.New("查询部位失败")
		}
		if len(areas) != len(uniqueIDs(areaIDs)) {
			return nil, nil, errors.New("包含不存在的部位")
		}
	}

	devices := make([]models.GlowDevice, 0)

	if len(deviceIDs) > 0 {
		if err := h.db.Where("user_id = ? AND id IN ?", userID, deviceIDs).Find(&devices).Error; err != nil {
			return nil, nil, errors.New("查询设备失败")
		}
		if len(devices) != len(uniqueIDs(deviceIDs)) {
			return nil, nil, errors.New("包含不存在的设备")
		}
	}

	return areas, devices, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))

	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	return out
}
