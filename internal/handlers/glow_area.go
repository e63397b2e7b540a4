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

type GlowAreaHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGlowAreaHandler(db *gorm.DB, logger *zap.Logger) *GlowAreaHandler {
	return &GlowAreaHandler{db: db, logger: logger}
}

type GlowAreaRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

type GlowAreaListQuery struct {
	types.PageQuery
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

func (h *GlowAreaHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var req GlowAreaRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	taken, err := h.nameTaken(userID, req.Name, 0)

	if err != nil {
		h.logger.Error("glow_area_lookup_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if taken {
		types.Fail(ctx, http.StatusBadRequest, "该部位名称已存在")
		return
	}

	area := models.GlowArea{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.db.Create(&area).Error; err != nil {
		h.logger.Error("glow_area_create_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.Created(ctx, area)
}

func (h *GlowAreaHandler) List(ctx *gin.Context) {
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

	scope := h.db.Model(&models.GlowArea{}).Where("user_id = ?", userID)

	if query.Keyword != "" {
		scope = scope.Where("name LIKE ?", "%"+query.Keyword+"%")
	}

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("glow_area_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	areas := make([]models.GlowArea, 0)

	if err := scope.Order("created_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&areas).Error; err != nil {
		h.logger.Error("glow_area_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      areas,
		Pagination: types.NewPagination(query.PageQuery, total),
	})
}

func (h *GlowAreaHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	areaID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的部位ID")
		return
	}

	var req GlowAreaRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var area models.GlowArea

	if err := h.db.Where("id = ? AND user_id = ?", areaID, userID).First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "部位不存在")
		} else {
			h.logger.Error("glow_area_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	taken, err := h.nameTaken(userID, req.Name, area.ID)

	if err != nil {
		h.logger.Error("glow_area_lookup_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if taken {
		types.Fail(ctx, http.StatusBadRequest, "该部位名称已存在")
		return
	}

	area.Name = req.Name
	area.Description = req.Description

	if err := h.db.Save(&area).Error; err != nil {
		h.logger.Error("glow_area_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, area)
}

func (h *GlowAreaHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	areaID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的部位ID")
		return
	}

	var area models.GlowArea

	if err := h.db.Where("id = ? AND user_id = ?", areaID, userID).First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "部位不存在")
		} else {
			h.logger.Error("glow_area_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	var dependents int64

	if err := h.db.Table("glow_plan_areas").Where("glow_area_id = ?", area.ID).Count(&dependents).Error; err != nil {
		h.logger.Error("glow_area_dependents_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if dependents > 0 {
		types.Fail(ctx, http.StatusBadRequest, "该部位已被计划使用，无法删除")
		return
	}

	if err := h.db.Delete(&area).Error; err != nil {
		h.logger.Error("glow_area_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OKMessage(ctx, "删除成功", nil)
}

// nameTaken checks per-user uniqueness; excludeID skips the record being
// updated.
func (h *GlowAreaHandler) nameTaken(userID uint, name string, excludeID uint) (bool, error) {
	var count int64

	scope := h.db.Model(&models.GlowArea{}).Where("user_id = ? AND name = ?", userID, name)

	if excludeID != 0 {
		scope = scope.Where("id != ?", excludeID)
	}

	if err := scope.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
