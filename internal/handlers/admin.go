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

type AdminHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAdminHandler(db *gorm.DB, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, logger: logger}
}

type AdminUserListQuery struct {
	types.PageQuery
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
	Status  string `form:"status" binding:"omitempty,oneof=ACTIVE DISABLED"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE DISABLED"`
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	var query AdminUserListQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Model(&models.User{})

	if query.Keyword != "" {
		scope = scope.Where("email LIKE ? OR name LIKE ?", "%"+query.Keyword+"%", "%"+query.Keyword+"%")
	}
	if query.Status != "" {
		scope = scope.Where("status = ?", query.Status)
	}

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("admin_user_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	var users []models.User

	if err := scope.Order("created_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&users).Error; err != nil {
		h.logger.Error("admin_user_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	items := make([]types.UserResponse, 0, len(users))

	for i := range users {
		items = append(items, userResponse(&users[i]))
	}

	types.OK(ctx, types.PagedResponse{
		Items:      items,
		Pagination: types.NewPagination(query.PageQuery, total),
	})
}

func (h *AdminHandler) UpdateUserStatus(ctx *gin.Context) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	userID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的用户ID")
		return
	}

	if userID == current.ID {
		types.Fail(ctx, http.StatusBadRequest, "不能修改自己的账号状态")
		return
	}

	var req UpdateUserStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	var user models.User

	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "用户不存在")
		} else {
			h.logger.Error("admin_user_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	if err := h.db.Model(&user).Update("status", models.UserStatus(req.Status)).Error; err != nil {
		h.logger.Error("admin_user_status_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	user.Status = models.UserStatus(req.Status)

	types.OKMessage(ctx, "状态已更新", gin.H{"user": userResponse(&user)})
}
