package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/auth"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db     *gorm.DB
	logger *zap.Logger
	domain string
}

func NewAuthHandler(db *gorm.DB, logger *zap.Logger, domain string) *AuthHandler {
	return &AuthHandler{db: db, logger: logger, domain: domain}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name            string `json:"name" binding:"omitempty,min=1,max=50"`
	Email           string `json:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"omitempty,min=8,max=72"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := h.db.Where("email = ?", req.Email).First(&existing).Error

	if err == nil {
		types.Fail(ctx, http.StatusBadRequest, "该邮箱已被注册")
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.Error("register_lookup_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		h.logger.Error("password_hash_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}

	if err := h.db.Create(&user).Error; err != nil {
		h.logger.Error("register_create_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if err := h.issueSession(ctx, &user); err != nil {
		types.ServerError(ctx)
		return
	}

	types.Created(ctx, gin.H{"user": userResponse(&user)})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	err := h.db.Where("email = ?", req.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.Fail(ctx, http.StatusBadRequest, "邮箱或密码错误")
			return
		}
		h.logger.Error("login_lookup_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		types.Fail(ctx, http.StatusBadRequest, "邮箱或密码错误")
		return
	}

	if user.Status != models.UserStatusActive {
		types.Fail(ctx, http.StatusBadRequest, "账号已被禁用")
		return
	}

	if err := h.issueSession(ctx, &user); err != nil {
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, gin.H{"user": userResponse(&user)})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSession(ctx)
	types.OKMessage(ctx, "已退出登录", nil)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var user models.User

	if err := h.db.First(&user, current.ID).Error; err != nil {
		types.Unauthorized(ctx)
		return
	}

	types.OK(ctx, gin.H{"user": userResponse(&user)})
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var user models.User

	if err := h.db.First(&user, current.ID).Error; err != nil {
		h.logger.Error("profile_fetch_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	var req UpdateProfileRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}

	if req.Email != "" {
		newEmail := strings.ToLower(strings.TrimSpace(req.Email))

		if newEmail != user.Email {
			var existing models.User
			err := h.db.Where("email = ? AND id != ?", newEmail, user.ID).First(&existing).Error
			if err == nil {
				types.Fail(ctx, http.StatusBadRequest, "该邮箱已被注册")
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				h.logger.Error("profile_email_lookup_failed", zap.Error(err))
				types.ServerError(ctx)
				return
			}
		}

		updates["email"] = newEmail
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			types.Fail(ctx, http.StatusBadRequest, "修改密码需要提供当前密码")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
			types.Fail(ctx, http.StatusBadRequest, "当前密码不正确")
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			h.logger.Error("password_hash_failed", zap.Error(err))
			types.ServerError(ctx)
			return
		}

		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		types.Fail(ctx, http.StatusBadRequest, "没有可更新的字段")
		return
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		h.logger.Error("profile_update_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if err := h.db.First(&user, user.ID).Error; err != nil {
		h.logger.Error("profile_refresh_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OKMessage(ctx, "资料已更新", gin.H{"user": userResponse(&user)})
}

func (h *AuthHandler) DeleteAccount(ctx *gin.Context) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var user models.User

	if err := h.db.First(&user, current.ID).Error; err != nil {
		h.logger.Error("account_fetch_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		types.Fail(ctx, http.StatusBadRequest, "密码不正确")
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		h.logger.Error("account_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	h.clearSession(ctx)
	types.OKMessage(ctx, "账号已注销", nil)
}

func (h *AuthHandler) issueSession(ctx *gin.Context, user *models.User) error {
	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)

	if err != nil {
		h.logger.Error("jwt_generate_failed", zap.Error(err))
		return err
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Domain:   h.domain,
		MaxAge:   60 * 60 * 24 * 7,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	return nil
}

func (h *AuthHandler) clearSession(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Domain:   h.domain,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func userResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
		Status: string(user.Status),
	}
}
