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

type GlowDeviceHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGlowDeviceHandler(db *gorm.DB, logger *zap.Logger) *GlowDeviceHandler {
	return &GlowDeviceHandler{db: db, logger: logger}
}

type GlowDeviceRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	DeviceModel string `json:"model" binding:"omitempty,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

func (h *GlowDeviceHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var req GlowDeviceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	taken, err := h.nameTaken(userID, req.Name, 0)

	if err != nil {
		h.logger.Error("glow_device_lookup_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if taken {
		types.Fail(ctx, http.StatusBadRequest, "该设备名称已存在")
		return
	}

	device := models.GlowDevice{
		UserID:      userID,
		Name:        req.Name,
		DeviceModel: req.DeviceModel,
		Description: req.Description,
	}

	if err := h.db.Create(&device).Error; err != nil {
		h.logger.Error("glow_device_create_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.Created(ctx, device)
}

func (h *GlowDeviceHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query GlowAreaListQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Model(&models.GlowDevice{}).Where("user_id = ?", userID)

	if query.Keyword != "" {
		scope = scope.Where("name LIKE ?", "%"+query.Keyword+"%")
	}

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("glow_device_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	devices := make([]models.GlowDevice, 0)

	if err := scope.Order("created_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&devices).Error; err != nil {
		h.logger.Error("glow_device_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      devices,
		Pagination: types.NewPagination(query.PageQuery, total),
	})
}

func (h *GlowDeviceHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	deviceID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的设备ID")
		return
	}

	var req GlowDeviceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var device models.GlowDevice

	if err := h.db.Where("id = ? AND user_id = ?", deviceID, userID).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "设备不存在")
		} else {
			h.logger.Error("glow_device_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	taken, err := h.nameTaken(userID, req.Name, device.ID)

	if err != nil {
		h.logger.Error("glow_device_lookup_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if taken {
		types.Fail(ctx, http.StatusBadRequest, "该设备名称已存在")
		return
	}

	device.Name = req.Name
	device.DeviceModel = req.DeviceModel
	device.Description = req.Description

	if err := h.db.Save(&device).Error; err != nil {
		h.logger.Error("glow_device_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, device)
}

func (h *GlowDeviceHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	deviceID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的设备ID")
		return
	}

	var device models.GlowDevice

	if err := h.db.Where("id = ? AND user_id = ?", deviceID, userID).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "设备不存在")
		} else {
			h.logger.Error("glow_device_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	var dependents int64

	if err := h.db.Table("glow_plan_devices").Where("glow_device_id = ?", device.ID).Count(&dependents).Error; err != nil {
		h.logger.Error("glow_device_dependents_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if dependents > 0 {
		types.Fail(ctx, http.StatusBadRequest, "该设备已被计划使用，无法删除")
		return
	}

	if err := h.db.Delete(&device).Error; err != nil {
		h.logger.Error("glow_device_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}

func (h *GlowDeviceHandler) nameTaken(userID uint, name string, excludeID uint) (bool, error) {
	var count int64

	scope := h.db.Model(&models.GlowDevice{}).Where("user_id = ? AND name = ?", userID, name)

	if excludeID != 0 {
		scope = scope.Where("id != ?", excludeID)
	}

	if err := scope.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
