package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/storeops/faxbridge/internal/models"
)

// Reconciler merges delivery outcomes into job records. Two independent
// producers feed it: the gateway's synchronous webhook and the inbox-polling
// sweep. Both funnel through Records.ApplyUpdate, whose transition guard makes
// the channels commutative and idempotent on a shared key.
type Reconciler struct {
	records Records
}

// NewReconciler returns a Reconciler over the given record store.
func NewReconciler(records Records) *Reconciler {
	return &Reconciler{records: records}
}

// ApplyWebhookUpdate handles one gateway callback for a tracking ID.
func (r *Reconciler) ApplyWebhookUpdate(ctx context.Context, trackingID, statusToken, faxKey string) error {
	if trackingID == "" {
		return &ValidationError{Msg: "trackingId is required"}
	}
	st, ok := models.ParseStatus(statusToken)
	if !ok {
		return &ValidationError{Msg: fmt.Sprintf("unknown status %q", statusToken)}
	}

	slog.Info("Applying webhook status update.", "trackingId", trackingID, "status", st, "faxKey", faxKey)
	return r.records.ApplyUpdate(ctx, trackingID, models.StatusUpdate{
		TrackingID: trackingID,
		FaxKey:     faxKey,
		Status:     st,
	})
}

// Completion notice grammar: subject FAXDONE:<faxKey>:<status>, body first
// line <requesterEmail>|<trackingId>. with optional HTML markup and trailing
// period.
var (
	completionSubjectRe = regexp.MustCompile(`^FAXDONE:([^:]+):([A-Za-z0-9]+)$`)
	htmlTagRe           = regexp.MustCompile(`<[^>]*>`)
)

// ApplyPolledMessage reconciles one unread completion notice. It writes the
// record keyed by the gateway's faxKey (upserting, since no job was ever
// created under that key) and, when the body names a tracking ID, the record
// the client actually subscribed to. A message that does not parse returns a
// ParseError; the caller logs it and consumes the message regardless.
func (r *Reconciler) ApplyPolledMessage(ctx context.Context, subject, body string) error {
	m := completionSubjectRe.FindStringSubmatch(strings.TrimSpace(subject))
	if m == nil {
		return &ParseError{Msg: fmt.Sprintf("subject %q does not match completion grammar", subject)}
	}
	faxKey := m[1]
	st, ok := models.ParseStatus(m[2])
	if !ok {
		return &ParseError{Msg: fmt.Sprintf("unknown status %q in subject %q", m[2], subject)}
	}

	requesterEmail, trackingID := parseCompletionBody(body)
	logCtx := slog.With("faxKey", faxKey, "trackingId", trackingID, "status", st)

	upd := models.StatusUpdate{
		FaxKey:         faxKey,
		Status:         st,
		RequesterEmail: requesterEmail,
	}
	if err := r.records.ApplyUpdate(ctx, faxKey, upd); err != nil {
		return err
	}

	if trackingID != "" {
		upd.TrackingID = trackingID
		if err := r.records.ApplyUpdate(ctx, trackingID, upd); err != nil {
			return err
		}
	} else {
		logCtx.Warn("Completion notice carried no tracking ID; only the faxKey record was updated.")
	}

	logCtx.Info("Reconciled polled completion notice.")
	return nil
}

// parseCompletionBody extracts the requester email and tracking ID from the
// first body line. The email is informational only.
func parseCompletionBody(body string) (requesterEmail, trackingID string) {
	line := body
	if i := strings.IndexAny(body, "\r\n"); i >= 0 {
		line = body[:i]
	}
	line = htmlTagRe.ReplaceAllString(line, "")

	parts := strings.Split(line, "|")
	requesterEmail = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		trackingID = strings.TrimSuffix(strings.TrimSpace(parts[1]), ".")
	}
	return requesterEmail, trackingID
}
