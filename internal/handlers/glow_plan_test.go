package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlowPlanCreateRejectsForeignRelations(t *testing.T) {
	server := newTestServer(t)
	_, token := server.createUser(t, "a@example.com")
	other, _ := server.createUser(t, "b@example.com")

	foreignArea := models.GlowArea{UserID: other.ID, Name: "面部"}
	require.NoError(t, server.db.Create(&foreignArea).Error)

	recorder := server.request(t, http.MethodPost, "/api/glow-plans", token, gin.H{
		"name":      "晨间护理",
		"startDate": "2026-08-01",
		"areaIds":   []uint{foreignArea.ID},
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "包含不存在的部位")

	// Unknown IDs fail identically to foreign ones.
	recorder = server.request(t, http.MethodPost, "/api/glow-plans", token, gin.H{
		"name":      "晨间护理",
		"startDate": "2026-08-01",
		"areaIds":   []uint{99999},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGlowPlanGetNeverLeaksAcrossUsers(t *testing.T) {
	server := newTestServer(t)
	owner, ownerToken := server.createUser(t, "owner@example.com")
	_, intruderToken := server.createUser(t, "intruder@example.com")

	plan := models.GlowPlan{UserID: owner.ID, Name: "晨间护理", StartDate: time.Now(), Status: models.PlanStatusActive}
	require.NoError(t, server.db.Create(&plan).Error)

	recorder := server.request(t, http.MethodGet, fmt.Sprintf("/api/glow-plans/%d", plan.ID), ownerToken, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = server.request(t, http.MethodGet, fmt.Sprintf("/api/glow-plans/%d", plan.ID), intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = server.request(t, http.MethodPost, fmt.Sprintf("/api/glow-plans/%d/complete", plan.ID), intruderToken, gin.H{})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGlowPlanCompleteWritesHistoryAndNotification(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	area := models.GlowArea{UserID: user.ID, Name: "面部"}
	require.NoError(t, server.db.Create(&area).Error)

	plan := models.GlowPlan{
		UserID:    user.ID,
		Name:      "晨间护理",
		StartDate: time.Now(),
		Status:    models.PlanStatusActive,
		Areas:     []models.GlowArea{area},
	}
	require.NoError(t, server.db.Create(&plan).Error)

	recorder := server.request(t, http.MethodPost, fmt.Sprintf("/api/glow-plans/%d/complete", plan.ID), token, gin.H{
		"duration": 15,
		"notes":    "感觉不错",
		"areaIds":  []uint{area.ID},
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var histories []models.GlowHistory
	require.NoError(t, server.db.Where("plan_id = ?", plan.ID).Find(&histories).Error)
	require.Len(t, histories, 1)
	require.NotNil(t, histories[0].Duration)
	assert.Equal(t, 15, *histories[0].Duration)
	assert.Equal(t, "感觉不错", histories[0].Notes)

	var notifications []models.Notification
	require.NoError(t, server.db.Where("user_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationAchievement, notifications[0].Type)
	assert.False(t, notifications[0].IsRead)
	require.NotNil(t, notifications[0].RelatedID)
	assert.Equal(t, histories[0].ID, *notifications[0].RelatedID)

	var fresh models.GlowPlan
	require.NoError(t, server.db.First(&fresh, plan.ID).Error)
	assert.NotNil(t, fresh.LastCompletedAt)
}

func TestGlowPlanCompleteRequiresActiveStatus(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	plan := models.GlowPlan{UserID: user.ID, Name: "晨间护理", StartDate: time.Now(), Status: models.PlanStatusPaused}
	require.NoError(t, server.db.Create(&plan).Error)

	recorder := server.request(t, http.MethodPost, fmt.Sprintf("/api/glow-plans/%d/complete", plan.ID), token, gin.H{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "只有进行中的计划才能打卡")

	// The refused attempt must leave no trace.
	var historyCount, notificationCount int64
	require.NoError(t, server.db.Model(&models.GlowHistory{}).Where("plan_id = ?", plan.ID).Count(&historyCount).Error)
	require.NoError(t, server.db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notificationCount).Error)
	assert.Zero(t, historyCount)
	assert.Zero(t, notificationCount)

	var fresh models.GlowPlan
	require.NoError(t, server.db.First(&fresh, plan.ID).Error)
	assert.Nil(t, fresh.LastCompletedAt)
}

func TestGlowPlanDeleteRemovesRemindersAndLinks(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	area := models.GlowArea{UserID: user.ID, Name: "面部"}
	require.NoError(t, server.db.Create(&area).Error)

	plan := models.GlowPlan{
		UserID:    user.ID,
		Name:      "晨间护理",
		StartDate: time.Now(),
		Status:    models.PlanStatusActive,
		Areas:     []models.GlowArea{area},
	}
	require.NoError(t, server.db.Create(&plan).Error)

	reminder := models.GlowReminder{
		UserID:       user.ID,
		PlanID:       plan.ID,
		Frequency:    models.FrequencyDaily,
		Time:         "08:00",
		NextReminder: time.Now().Add(time.Hour),
		IsActive:     true,
	}
	require.NoError(t, server.db.Create(&reminder).Error)

	recorder := server.request(t, http.MethodDelete, fmt.Sprintf("/api/glow-plans/%d", plan.ID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var reminderCount, linkCount int64
	require.NoError(t, server.db.Model(&models.GlowReminder{}).Where("plan_id = ?", plan.ID).Count(&reminderCount).Error)
	require.NoError(t, server.db.Table("glow_plan_areas").Where("glow_plan_id = ?", plan.ID).Count(&linkCount).Error)
	assert.Zero(t, reminderCount)
	assert.Zero(t, linkCount)

	// The area itself survives.
	var areaCount int64
	require.NoError(t, server.db.Model(&models.GlowArea{}).Where("id = ?", area.ID).Count(&areaCount).Error)
	assert.EqualValues(t, 1, areaCount)
}

func TestGlowPlanListFiltersByStatus(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	for i, status := range []models.PlanStatus{models.PlanStatusActive, models.PlanStatusActive, models.PlanStatusArchived} {
		require.NoError(t, server.db.Create(&models.GlowPlan{
			UserID:    user.ID,
			Name:      fmt.Sprintf("计划%d", i),
			StartDate: time.Now(),
			Status:    status,
		}).Error)
	}

	recorder := server.request(t, http.MethodGet, "/api/glow-plans?status=ACTIVE", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Data struct {
			Items      []models.GlowPlan `json:"items"`
			Pagination struct {
				Total int64 `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}
	decodeJSON(t, recorder, &payload)

	assert.Len(t, payload.Data.Items, 2)
	assert.EqualValues(t, 2, payload.Data.Pagination.Total)
}
