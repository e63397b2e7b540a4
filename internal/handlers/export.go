package handlers

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExportHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewExportHandler(db *gorm.DB, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{db: db, logger: logger}
}

type ExportQuery struct {
	Format string `form:"format,default=json" binding:"omitempty,oneof=json csv xlsx"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

type exportRow struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Detail      string `json:"detail"`
	Notes       string `json:"notes"`
	CompletedAt string `json:"completedAt"`
}

var exportHeader = []string{"ID", "名称", "时长(分钟)", "详情", "备注", "完成时间"}

func (h *ExportHandler) GlowHistory(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query ExportQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Preload("Plan").Where("user_id = ?", userID)
	scope = exportDateRange(scope, query)

	var histories []models.GlowHistory

	if err := scope.Order("completed_at DESC").Find(&histories).Error; err != nil {
		h.logger.Error("export_glow_history_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	rows := make([]exportRow, 0, len(histories))

	for _, record := range histories {
		rows = append(rows, exportRow{
			ID:          record.ID,
			Name:        record.Plan.Name,
			Duration:    optionalInt(record.Duration),
			Notes:       record.Notes,
			CompletedAt: record.CompletedAt.Format("2006-01-02 15:04:05"),
		})
	}

	h.write(ctx, query.Format, "glow-history", rows)
}

func (h *ExportHandler) FitnessHistory(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	var query ExportQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		types.ValidationFailed(ctx, err)
		return
	}

	scope := h.db.Preload("Item").Where("user_id = ?", userID)
	scope = exportDateRange(scope, query)

	var histories []models.FitnessHistory

	if err := scope.Order("completed_at DESC").Find(&histories).Error; err != nil {
		h.logger.Error("export_fitness_history_failed", zap.Error(err))
		types.ServerError(ctx)
		return
	}

	rows := make([]exportRow, 0, len(histories))

	for _, record := range histories {
		rows = append(rows, exportRow{
			ID:          record.ID,
			Name:        record.Item.Name,
			Duration:    optionalInt(record.Duration),
			Detail:      fmt.Sprintf("%s组 x %s次", optionalInt(record.Sets), optionalInt(record.Reps)),
			Notes:       record.Notes,
			CompletedAt: record.CompletedAt.Format("2006-01-02 15:04:05"),
		})
	}

	h.write(ctx, query.Format, "fitness-history", rows)
}

func (h *ExportHandler) write(ctx *gin.Context, format, name string, rows []exportRow) {
	filename := fmt.Sprintf("%s-%s", name, time.Now().Format("20060102"))

	switch format {
	case "csv":
		ctx.Header("Content-Type", "text/csv; charset=utf-8")
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))

		writer := csv.NewWriter(ctx.Writer)
		writer.Write(exportHeader)

		for _, row := range rows {
			writer.Write([]string{
				strconv.FormatUint(uint64(row.ID), 10),
				row.Name, row.Duration, row.Detail, row.Notes, row.CompletedAt,
			})
		}

		writer.Flush()

	case "xlsx":
		file := excelize.NewFile()
		defer file.Close()

		sheet := file.GetSheetName(0)
		file.SetSheetRow(sheet, "A1", &exportHeader)

		for i, row := range rows {
			cell := fmt.Sprintf("A%d", i+2)
			file.SetSheetRow(sheet, cell, &[]interface{}{
				row.ID, row.Name, row.Duration, row.Detail, row.Notes, row.CompletedAt,
			})
		}

		ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))

		if err := file.Write(ctx.Writer); err != nil {
			h.logger.Error("export_xlsx_write_failed", zap.Error(err))
		}

	default:
		types.OK(ctx, rows)
	}
}

func exportDateRange(scope *gorm.DB, query ExportQuery) *gorm.DB {
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

func optionalInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
