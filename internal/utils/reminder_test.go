package utils

import (
	"testing"
	"time"

	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrenceDaily(t *testing.T) {
	// Wednesday 2026-03-04 08:00 local.
	after := time.Date(2026, 3, 4, 8, 0, 0, 0, time.Local)

	next, err := NextOccurrence(models.FrequencyDaily, 0, "09:30", nil, after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 30, 0, 0, time.Local), next)

	// Already past today's slot, rolls to tomorrow.
	next, err = NextOccurrence(models.FrequencyDaily, 0, "07:00", nil, after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 7, 0, 0, 0, time.Local), next)

	// Exactly on the slot counts as consumed.
	next, err = NextOccurrence(models.FrequencyDaily, 0, "08:00", nil, after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 8, 0, 0, 0, time.Local), next)
}

func TestNextOccurrenceWeekly(t *testing.T) {
	// Wednesday.
	after := time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)

	// Monday (1) and Friday (5): next is Friday.
	next, err := NextOccurrence(models.FrequencyWeekly, 0, "09:00", []int{1, 5}, after)
	require.NoError(t, err)
	assert.Equal(t, time.Weekday(5), next.Weekday())
	assert.Equal(t, time.Date(2026, 3, 6, 9, 0, 0, 0, time.Local), next)

	// Same weekday with the slot already gone rolls a full week.
	next, err = NextOccurrence(models.FrequencyWeekly, 0, "09:00", []int{3}, after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local), next)

	// Same weekday with the slot still ahead stays today.
	next, err = NextOccurrence(models.FrequencyWeekly, 0, "18:00", []int{3}, after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 18, 0, 0, 0, time.Local), next)

	_, err = NextOccurrence(models.FrequencyWeekly, 0, "09:00", nil, after)
	assert.Error(t, err)

	_, err = NextOccurrence(models.FrequencyWeekly, 0, "09:00", []int{7}, after)
	assert.Error(t, err)
}

func TestNextOccurrenceCustom(t *testing.T) {
	after := time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)

	next, err := NextOccurrence(models.FrequencyCustom, 3, "09:00", nil, after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local), next)

	_, err = NextOccurrence(models.FrequencyCustom, 0, "09:00", nil, after)
	assert.Error(t, err)
}

func TestNextOccurrenceRejectsBadClock(t *testing.T) {
	after := time.Now()

	for _, clock := range []string{"", "9", "24:00", "12:60", "ab:cd"} {
		_, err := NextOccurrence(models.FrequencyDaily, 0, clock, nil, after)
		assert.Error(t, err, "clock %q", clock)
	}
}

func TestNormalizeWeekdays(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, NormalizeWeekdays([]int{5, 3, 1, 3, 5}))
	assert.Empty(t, NormalizeWeekdays(nil))
}
