package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitnessItemCreateWithVideos(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")
	other, _ := server.createUser(t, "b@example.com")

	video := models.UserVideo{UserID: user.ID, Filename: "a.mp4", OriginalName: "a.mp4", Path: "/tmp/a.mp4", URL: "/uploads/a.mp4", MimeType: "video/mp4"}
	foreignVideo := models.UserVideo{UserID: other.ID, Filename: "b.mp4", OriginalName: "b.mp4", Path: "/tmp/b.mp4", URL: "/uploads/b.mp4", MimeType: "video/mp4"}
	require.NoError(t, server.db.Create(&video).Error)
	require.NoError(t, server.db.Create(&foreignVideo).Error)

	recorder := server.request(t, http.MethodPost, "/api/fitness-items", token, gin.H{
		"name":            "深蹲",
		"plannedDuration": 20,
		"plannedSets":     4,
		"plannedReps":     12,
		"videoIds":        []uint{video.ID},
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var item models.FitnessItem
	require.NoError(t, server.db.Preload("Videos").Where("user_id = ?", user.ID).First(&item).Error)
	require.Len(t, item.Videos, 1)
	assert.Equal(t, video.ID, item.Videos[0].ID)

	// Someone else's video cannot be attached.
	recorder = server.request(t, http.MethodPost, "/api/fitness-items", token, gin.H{
		"name":     "硬拉",
		"videoIds": []uint{foreignVideo.ID},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestFitnessItemCompleteRecordsSetsAndReps(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	item := models.FitnessItem{UserID: user.ID, Name: "深蹲", Status: models.PlanStatusActive}
	require.NoError(t, server.db.Create(&item).Error)

	recorder := server.request(t, http.MethodPost, fmt.Sprintf("/api/fitness-items/%d/complete", item.ID), token, gin.H{
		"duration": 25,
		"sets":     4,
		"reps":     12,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var history models.FitnessHistory
	require.NoError(t, server.db.Where("item_id = ?", item.ID).First(&history).Error)
	require.NotNil(t, history.Sets)
	require.NotNil(t, history.Reps)
	assert.Equal(t, 4, *history.Sets)
	assert.Equal(t, 12, *history.Reps)

	var notificationCount int64
	require.NoError(t, server.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", user.ID, models.NotificationAchievement).
		Count(&notificationCount).Error)
	assert.EqualValues(t, 1, notificationCount)
}

func TestFitnessItemCompleteRejectsArchived(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	item := models.FitnessItem{UserID: user.ID, Name: "深蹲", Status: models.PlanStatusArchived}
	require.NoError(t, server.db.Create(&item).Error)

	recorder := server.request(t, http.MethodPost, fmt.Sprintf("/api/fitness-items/%d/complete", item.ID), token, gin.H{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var count int64
	require.NoError(t, server.db.Model(&models.FitnessHistory{}).Where("item_id = ?", item.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFitnessItemKeywordSearch(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	for _, name := range []string{"深蹲", "硬拉", "深蹲跳"} {
		require.NoError(t, server.db.Create(&models.FitnessItem{
			UserID: user.ID,
			Name:   name,
			Status: models.PlanStatusActive,
		}).Error)
	}

	recorder := server.request(t, http.MethodGet, "/api/fitness-items?keyword=深蹲", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Data struct {
			Items []models.FitnessItem `json:"items"`
		} `json:"data"`
	}
	decodeJSON(t, recorder, &payload)
	assert.Len(t, payload.Data.Items, 2)
}
