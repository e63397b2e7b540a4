package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/storage"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedVideoMimeTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/avi":       true,
	"video/x-msvideo": true,
	"video/quicktime": true,
	"video/x-ms-wmv":  true,
}

type VideoHandler struct {
	db      *gorm.DB
	logger  *zap.Logger
	store   *storage.LocalStorage
	maxSize int64
}

func NewVideoHandler(db *gorm.DB, logger *zap.Logger, store *storage.LocalStorage, maxSizeMB int64) *VideoHandler {
	return &VideoHandler{db: db, logger: logger, store: store, maxSize: maxSizeMB << 20}
}

// Upload stores the file first and inserts the row second; if the insert
// fails the file is removed again, so a failed upload never leaves an
// orphan on disk.
func (h *VideoHandler) Upload(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("video")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "缺少视频文件")
		return
	}

	if fileHeader.Size > h.maxSize {
		types.Fail(ctx, http.StatusBadRequest, "视频文件超过大小限制")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	if !allowedVideoMimeTypes[mimeType] {
		types.Fail(ctx, http.StatusBadRequest, "不支持的视频格式")
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		h.logger.Error("video_open_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}
	defer file.Close()

	stored, err := h.store.Store(file, fileHeader.Filename, userID, time.Now())

	if err != nil {
		h.logger.Error("video_store_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	video := models.UserVideo{
		UserID:       userID,
		Filename:     stored.Filename,
		OriginalName: fileHeader.Filename,
		Path:         stored.Path,
		URL:          stored.URL,
		Size:         fileHeader.Size,
		MimeType:     mimeType,
	}

	if err := h.db.Create(&video).Error; err != nil {
		h.logger.Error("video_create_failed", zap.Error(err))

		if delErr := h.store.Delete(stored.URL); delErr != nil {
			h.logger.Error("video_compensate_failed", zap.String("url", stored.URL), zap.Error(delErr))
		}

		types.ServerError(ctx)
		return
	}

	types.Created(ctx, video)
}

func (h *VideoHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query types.PageQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Model(&models.UserVideo{}).Where("user_id = ?", userID)

	var total int64

	if err := scope.Count(&total).Error; err != nil {
		h.logger.Error("video_count_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	videos := make([]models.UserVideo, 0)

	if err := scope.Order("created_at DESC").Offset(query.Offset()).Limit(query.Limit).Find(&videos).Error; err != nil {
		h.logger.Error("video_list_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	types.OK(ctx, types.PagedResponse{
		Items:      videos,
		Pagination: types.NewPagination(query, total),
	})
}

func (h *VideoHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	videoID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		types.Fail(ctx, http.StatusBadRequest, "无效的视频ID")
		return
	}

	var video models.UserVideo

	if err := h.db.Where("id = ? AND user_id = ?", videoID, userID).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.NotFound(ctx, "视频不存在")
		} else {
			h.logger.Error("video_fetch_failed", zap.Error(err))
			types.ServerError(ctx)
		}
		return
	}

	var dependents int64

	if err := h.db.Table("fitness_item_videos").Where("user_video_id = ?", video.ID).Count(&dependents).Error; err != nil {
		h.logger.Error("video_dependents_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if dependents > 0 {
		types.Fail(ctx, http.StatusBadRequest, "该视频已被训练项目使用，无法删除")
		return
	}

	if err := h.db.Delete(&video).Error; err != nil {
		h.logger.Error("video_delete_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	if err := h.store.Delete(video.URL); err != nil {
		h.logger.Warn("video_file_delete_failed", zap.String("url", video.URL), zap.Error(err))
	}

	types.OKMessage(ctx, "删除成功", nil)
}
