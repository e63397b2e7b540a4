package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGlowReminderComputesNextReminder(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	plan := models.GlowPlan{UserID: user.ID, Name: "晨间护理", StartDate: time.Now(), Status: models.PlanStatusActive}
	require.NoError(t, server.db.Create(&plan).Error)

	recorder := server.request(t, http.MethodPost, "/api/glow-reminders", token, gin.H{
		"planId":    plan.ID,
		"frequency": "WEEKLY",
		"time":      "08:30",
		"weekdays":  []int{5, 1, 5},
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var reminder models.GlowReminder
	require.NoError(t, server.db.Where("plan_id = ?", plan.ID).First(&reminder).Error)

	assert.True(t, reminder.NextReminder.After(time.Now()), "first occurrence is in the future")
	assert.True(t, reminder.IsActive)

	var weekdays []int
	require.NoError(t, json.Unmarshal(reminder.Weekdays, &weekdays))
	assert.Equal(t, []int{1, 5}, weekdays, "weekdays are deduplicated and sorted")
}

func TestCreateGlowReminderValidation(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	plan := models.GlowPlan{UserID: user.ID, Name: "晨间护理", StartDate: time.Now(), Status: models.PlanStatusActive}
	require.NoError(t, server.db.Create(&plan).Error)

	// Weekly schedule without weekdays cannot be realized.
	recorder := server.request(t, http.MethodPost, "/api/glow-reminders", token, gin.H{
		"planId":    plan.ID,
		"frequency": "WEEKLY",
		"time":      "08:30",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Malformed clock is caught by binding.
	recorder = server.request(t, http.MethodPost, "/api/glow-reminders", token, gin.H{
		"planId":    plan.ID,
		"frequency": "DAILY",
		"time":      "25:00",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Reminders for someone else's plan are refused.
	other, _ := server.createUser(t, "b@example.com")
	foreignPlan := models.GlowPlan{UserID: other.ID, Name: "别人的计划", StartDate: time.Now(), Status: models.PlanStatusActive}
	require.NoError(t, server.db.Create(&foreignPlan).Error)

	recorder = server.request(t, http.MethodPost, "/api/glow-reminders", token, gin.H{
		"planId":    foreignPlan.ID,
		"frequency": "DAILY",
		"time":      "08:30",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpdateGlowReminderTogglesActivity(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	plan := models.GlowPlan{UserID: user.ID, Name: "晨间护理", StartDate: time.Now(), Status: models.PlanStatusActive}
	require.NoError(t, server.db.Create(&plan).Error)

	reminder := models.GlowReminder{
		UserID:       user.ID,
		PlanID:       plan.ID,
		Frequency:    models.FrequencyDaily,
		Interval:     1,
		Time:         "08:00",
		NextReminder: time.Now().Add(time.Hour),
		IsActive:     true,
	}
	require.NoError(t, server.db.Create(&reminder).Error)

	recorder := server.request(t, http.MethodPut, fmt.Sprintf("/api/glow-reminders/%d", reminder.ID), token, gin.H{
		"planId":    plan.ID,
		"frequency": "DAILY",
		"time":      "20:00",
		"isActive":  false,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var fresh models.GlowReminder
	require.NoError(t, server.db.First(&fresh, reminder.ID).Error)
	assert.False(t, fresh.IsActive)
	assert.Equal(t, "20:00", fresh.Time)
}

func TestCreateFitnessReminderRequiresOwnItem(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	item := models.FitnessItem{UserID: user.ID, Name: "深蹲", Status: models.PlanStatusActive}
	require.NoError(t, server.db.Create(&item).Error)

	recorder := server.request(t, http.MethodPost, "/api/fitness-reminders", token, gin.H{
		"planId":    item.ID,
		"frequency": "CUSTOM",
		"interval":  3,
		"time":      "19:00",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var reminder models.FitnessReminder
	require.NoError(t, server.db.Where("item_id = ?", item.ID).First(&reminder).Error)
	assert.Equal(t, 3, reminder.Interval)

	recorder = server.request(t, http.MethodPost, "/api/fitness-reminders", token, gin.H{
		"planId":    uint(99999),
		"frequency": "DAILY",
		"time":      "19:00",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
