package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/storeops/faxbridge/internal/models"
)

func TestMergeDataOmitsAbsentFields(t *testing.T) {
	now := time.Date(2026, 2, 5, 12, 50, 13, 0, time.UTC)

	data := mergeData(models.StatusUpdate{Status: models.StatusSuccess}, models.StatusSuccess, now)
	assert.Equal(t, map[string]interface{}{
		"status":    "Success",
		"updatedAt": now,
	}, data)

	data = mergeData(models.StatusUpdate{
		TrackingID:     "WEB-20260205125013",
		FaxKey:         "K1",
		Status:         models.StatusFailed,
		RequesterEmail: "user@x.com",
	}, models.StatusFailed, now)
	assert.Equal(t, map[string]interface{}{
		"status":         "Failed",
		"updatedAt":      now,
		"trackingId":     "WEB-20260205125013",
		"faxKey":         "K1",
		"requesterEmail": "user@x.com",
	}, data)
}

func TestMergeDataUsesGuardedStatus(t *testing.T) {
	now := time.Now().UTC()

	// The guard may keep the stored terminal value; the merge must then carry
	// that value, not the incoming one.
	next, ok := models.NextStatus(models.StatusSuccess, models.StatusSuccess)
	assert.True(t, ok)
	data := mergeData(models.StatusUpdate{Status: models.StatusSuccess}, next, now)
	assert.Equal(t, "Success", data["status"])
}
