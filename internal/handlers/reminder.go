package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReminderHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewReminderHandler(db *gorm.DB, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{db: db, logger: logger}
}

type ReminderRequest struct {
	PlanID    uint   `json:"planId" binding:"required"`
	Frequency string `json:"frequency" binding:"required,oneof=DAILY WEEKLY CUSTOM"`
	Interval  int    `json:"interval" binding:"omitempty,min=1,max=365"`
	Time      string `json:"time" binding:"required,datetime=15:04"`
	Weekdays  []int  `json:"weekdays" binding:"omitempty,max=7,dive,min=0,max=6"`
	IsActive  *bool  `json:"isActive"`
}

// prepare validates the schedule shape and computes the first NextReminder.
func (r *ReminderRequest) prepare() (time.Time, datatypes.JSON, error) {
	weekdays := utils.NormalizeWeekdays(r.Weekdays)

	next, err := utils.NextOccurrence(models.ReminderFrequency(r.Frequency), r.interval(), r.Time, weekdays, time.Now())

	if err != nil {
		return time.Time{}, nil, err
	}

	var weekdaysJSON datatypes.JSON

	if len(weekdays) > 0 {
		raw, err := json.Marshal(weekdays)
		if err != nil {
			return time.Time{}, nil, err
		}
		weekdaysJSON = datatypes.JSON(raw)
	}

	return next, weekdaysJSON, nil
}

func (r *ReminderRequest) interval() int {
	if r.Interval == 0 {
		return 1
	}
	return r.Interval
}

func (r *ReminderRequest) active() bool {
	if r.IsActive == nil {
		return true
	}
	return *r.IsActive
}

// --- glow reminders ---

func (h *ReminderHandler) CreateGlow(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var req ReminderRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var plan models.GlowPlan

	if err := h.db.Where("id = ? AND user_id = ?", req.PlanID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "计划不存在")
		} else {
			h.logger.Error("glow_reminder_plan_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	next, weekdaysJSON, err := req.prepare()

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "提醒设置不合法")
		return
	}

	reminder := models.GlowReminder{
		PlanID:       plan.ID,
		UserID:       userID,
		Frequency:    models.ReminderFrequency(req.Frequency),
		Interval:     req.interval(),
		Time:         req.Time,
		Weekdays:     weekdaysJSON,
		NextReminder: next,
		IsActive:     req.active(),
	}

	if err := h.db.Create(&reminder).Error; err != nil {
		h.logger.Error("glow_reminder_create_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.Created(ctx, reminder)
}

func (h *ReminderHandler) ListGlow(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	reminders := make([]models.GlowReminder, 0)

	if err := h.db.Where("user_id = ?", userID).Order("next_reminder ASC").Find(&reminders).Error; err != nil {
		h.logger.Error("glow_reminder_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, reminders)
}

func (h *ReminderHandler) UpdateGlow(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	reminderID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的提醒ID")
		return
	}

	var req ReminderRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var reminder models.GlowReminder

	if err := h.db.Where("id = ? AND user_id = ?", reminderID, userID).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "提醒不存在")
		} else {
			h.logger.Error("glow_reminder_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	next, weekdaysJSON, err := req.prepare()

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "提醒设置不合法")
		return
	}

	reminder.Frequency = models.ReminderFrequency(req.Frequency)
	reminder.Interval = req.interval()
	reminder.Time = req.Time
	reminder.Weekdays = weekdaysJSON
	reminder.NextReminder = next
	reminder.IsActive = req.active()

	if err := h.db.Save(&reminder).Error; err != nil {
		h.logger.Error("glow_reminder_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, reminder)
}

func (h *ReminderHandler) DeleteGlow(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	reminderID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的提醒ID")
		return
	}

	result := h.db.Where("id = ? AND user_id = ?", reminderID, userID).Delete(&models.GlowReminder{})

	if result.Error != nil {
		h.logger.Error("glow_reminder_delete_failed", zap.Error(result.Error))
		types.ServerError(ctx)
		return
	}

	if result.RowsAffected == 0 {
		types.NotFound(ctx, "提醒不存在")
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}

// --- fitness reminders ---

func (h *ReminderHandler) CreateFitness(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var req ReminderRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var item models.FitnessItem

	if err := h.db.Where("id = ? AND user_id = ?", req.PlanID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "项目不存在")
		} else {
			h.logger.Error("fitness_reminder_item_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	next, weekdaysJSON, err := req.prepare()

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "提醒设置不合法")
		return
	}

	reminder := models.FitnessReminder{
		ItemID:       item.ID,
		UserID:       userID,
		Frequency:    models.ReminderFrequency(req.Frequency),
		Interval:     req.interval(),
		Time:         req.Time,
		Weekdays:     weekdaysJSON,
		NextReminder: next,
		IsActive:     req.active(),
	}

	if err := h.db.Create(&reminder).Error; err != nil {
		h.logger.Error("fitness_reminder_create_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.Created(ctx, reminder)
}

func (h *ReminderHandler) ListFitness(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	reminders := make([]models.FitnessReminder, 0)

	if err := h.db.Where("user_id = ?", userID).Order("next_reminder ASC").Find(&reminders).Error; err != nil {
		h.logger.Error("fitness_reminder_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, reminders)
}

func (h *ReminderHandler) UpdateFitness(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	reminderID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的提醒ID")
		return
	}

	var req ReminderRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var reminder models.FitnessReminder

	if err := h.db.Where("id = ? AND user_id = ?", reminderID, userID).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "提醒不存在")
		} else {
			h.logger.Error("fitness_reminder_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	next, weekdaysJSON, err := req.prepare()

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "提醒设置不合法")
		return
	}

	reminder.Frequency = models.ReminderFrequency(req.Frequency)
	reminder.Interval = req.interval()
	reminder.Time = req.Time
	reminder.Weekdays = weekdaysJSON
	reminder.NextReminder = next
	reminder.IsActive = req.active()

	if err := h.db.Save(&reminder).Error; err != nil {
		h.logger.Error("fitness_reminder_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, reminder)
}

func (h *ReminderHandler) DeleteFitness(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	reminderID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的提醒ID")
		return
	}

	result := h.db.Where("id = ? AND user_id = ?", reminderID, userID).Delete(&models.FitnessReminder{})

	if result.Error != nil {
		h.logger.Error("fitness_reminder_delete_failed", zap.Error(result.Error))
		types.ServerError(ctx)
		return
	}

	if result.RowsAffected == 0 {
		types.NotFound(ctx, "提醒不存在")
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}
