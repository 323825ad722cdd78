package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/faxbridge/internal/models"
)

func TestApplyWebhookUpdate(t *testing.T) {
	records := newFakeRecords()
	require.NoError(t, records.CreatePending(context.Background(), models.FaxJob{
		TrackingID:     "WEB-20260205125013",
		StoreNumber:    "#005",
		RequesterEmail: "webfax@example.com",
	}))

	r := NewReconciler(records)
	err := r.ApplyWebhookUpdate(context.Background(), "WEB-20260205125013", "Success", "K1")
	require.NoError(t, err)

	job, ok := records.job("WEB-20260205125013")
	require.True(t, ok)
	assert.Equal(t, models.StatusSuccess, job.Status)
	assert.Equal(t, "K1", job.FaxKey)
	assert.Equal(t, "#005", job.StoreNumber, "merge must not clear unrelated fields")
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))
}

func TestApplyWebhookUpdateValidation(t *testing.T) {
	r := NewReconciler(newFakeRecords())
	var vErr *ValidationError

	err := r.ApplyWebhookUpdate(context.Background(), "", "Success", "")
	assert.ErrorAs(t, err, &vErr)

	err = r.ApplyWebhookUpdate(context.Background(), "WEB-20260205125013", "Delivered", "")
	assert.ErrorAs(t, err, &vErr)
}

func TestApplyPolledMessageWritesBothKeys(t *testing.T) {
	records := newFakeRecords()
	require.NoError(t, records.CreatePending(context.Background(), models.FaxJob{
		TrackingID: "WEB-20260205125013",
	}))

	r := NewReconciler(records)
	err := r.ApplyPolledMessage(context.Background(),
		"FAXDONE:K1:Success",
		"user@x.com|WEB-20260205125013.\nsecond line is ignored")
	require.NoError(t, err)

	byKey, ok := records.job("K1")
	require.True(t, ok, "faxKey record must be upserted")
	assert.Equal(t, models.StatusSuccess, byKey.Status)
	assert.Equal(t, "K1", byKey.FaxKey)
	assert.Equal(t, "user@x.com", byKey.RequesterEmail)

	byTracking, ok := records.job("WEB-20260205125013")
	require.True(t, ok)
	assert.Equal(t, models.StatusSuccess, byTracking.Status)
	assert.Equal(t, "K1", byTracking.FaxKey)
	assert.Equal(t, "WEB-20260205125013", byTracking.TrackingID)
}

func TestApplyPolledMessageReplayIdempotent(t *testing.T) {
	records := newFakeRecords()
	r := NewReconciler(records)

	subject := "FAXDONE:K1:Success"
	body := "user@x.com|WEB-20260205125013."

	require.NoError(t, r.ApplyPolledMessage(context.Background(), subject, body))
	first, _ := records.job("WEB-20260205125013")

	require.NoError(t, r.ApplyPolledMessage(context.Background(), subject, body))
	second, _ := records.job("WEB-20260205125013")

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.FaxKey, second.FaxKey)
	assert.Equal(t, first.RequesterEmail, second.RequesterEmail)
	assert.Len(t, records.jobs, 2, "replay must not create extra records")
}

func TestStalePolledPendingDoesNotRegressWebhookSuccess(t *testing.T) {
	records := newFakeRecords()
	require.NoError(t, records.CreatePending(context.Background(), models.FaxJob{
		TrackingID: "WEB-20260205125013",
	}))

	r := NewReconciler(records)
	require.NoError(t, r.ApplyWebhookUpdate(context.Background(), "WEB-20260205125013", "Success", "K1"))

	// A late poller update carrying a stale Pending must be dropped.
	err := r.ApplyPolledMessage(context.Background(),
		"FAXDONE:K1:Pending",
		"user@x.com|WEB-20260205125013.")
	require.NoError(t, err)

	job, _ := records.job("WEB-20260205125013")
	assert.Equal(t, models.StatusSuccess, job.Status)
}

func TestApplyPolledMessageBodyVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain", "user@x.com|WEB-20260205125013."},
		{"no trailing period", "user@x.com|WEB-20260205125013"},
		{"html markup", "<p><b>user@x.com</b>|WEB-20260205125013.</p>"},
		{"crlf line ending", "user@x.com|WEB-20260205125013.\r\nrest"},
		{"surrounding spaces", "user@x.com | WEB-20260205125013. "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := newFakeRecords()
			r := NewReconciler(records)
			require.NoError(t, r.ApplyPolledMessage(context.Background(), "FAXDONE:K1:Failed", tt.body))

			job, ok := records.job("WEB-20260205125013")
			require.True(t, ok)
			assert.Equal(t, models.StatusFailed, job.Status)
			assert.Equal(t, "user@x.com", job.RequesterEmail)
		})
	}
}

func TestApplyPolledMessageWithoutTrackingID(t *testing.T) {
	records := newFakeRecords()
	r := NewReconciler(records)

	require.NoError(t, r.ApplyPolledMessage(context.Background(), "FAXDONE:K9:Success", "user@x.com"))

	_, ok := records.job("K9")
	assert.True(t, ok)
	assert.Len(t, records.jobs, 1, "only the faxKey record is written")
}

func TestApplyPolledMessageParseErrors(t *testing.T) {
	r := NewReconciler(newFakeRecords())
	var pErr *ParseError

	for name, subject := range map[string]string{
		"wrong prefix":   "FAXSTART:K1:Success",
		"missing status": "FAXDONE:K1",
		"empty":          "",
		"unknown status": "FAXDONE:K1:Delivered",
		"status with punctuation": "FAXDONE:K1:Suc-cess",
	} {
		t.Run(name, func(t *testing.T) {
			err := r.ApplyPolledMessage(context.Background(), subject, "user@x.com|WEB-1.")
			assert.ErrorAs(t, err, &pErr)
		})
	}
}
