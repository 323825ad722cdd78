// Package store is the Firestore data layer for fax jobs, the audit log and
// the store directory.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/storeops/faxbridge/internal/config"
	"github.com/storeops/faxbridge/internal/models"
	"github.com/storeops/faxbridge/internal/services"
)

var _ services.Records = (*Store)(nil)

// Store wraps the Firestore collections used by the fax bridge.
type Store struct {
	client  *firestore.Client
	jobs    string
	audit   string
	stores  string
	nowFunc func() time.Time
}

// New returns a Store over the collections named in cfg.
func New(client *firestore.Client, cfg *config.Config) *Store {
	return &Store{
		client:  client,
		jobs:    cfg.JobsCollection,
		audit:   cfg.AuditCollection,
		stores:  cfg.StoresCollection,
		nowFunc: time.Now,
	}
}

// CreatePending writes a new job record keyed by its tracking ID. Create, not
// Set: a duplicate tracking ID must surface as an error rather than clobber an
// existing job.
func (s *Store) CreatePending(ctx context.Context, job models.FaxJob) error {
	now := s.nowFunc().UTC()
	job.Status = models.StatusPending
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := s.client.Collection(s.jobs).Doc(job.TrackingID).Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.TrackingID, err)
	}
	return nil
}

// ApplyUpdate merge-writes one reconciliation update onto the job keyed by
// key, creating the record if it does not exist. The read and conditional
// write run in one transaction so the webhook and the sweep cannot interleave
// on the same document. A stale update whose status transition is rejected is
// logged and dropped without touching the record.
func (s *Store) ApplyUpdate(ctx context.Context, key string, upd models.StatusUpdate) error {
	ref := s.client.Collection(s.jobs).Doc(key)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current models.FaxJob
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := snap.DataTo(&current); err != nil {
				return fmt.Errorf("failed to decode job %s: %w", key, err)
			}
		case status.Code(err) == codes.NotFound:
			// Upsert path: the gateway's faxKey was never a primary key.
		default:
			return err
		}

		next, ok := models.NextStatus(current.Status, upd.Status)
		if !ok {
			slog.Warn("Ignoring stale status update.",
				"key", key, "current", current.Status, "incoming", upd.Status)
			return nil
		}

		return tx.Set(ref, mergeData(upd, next, s.nowFunc().UTC()), firestore.MergeAll)
	})
	if err != nil {
		return fmt.Errorf("failed to apply status update to %s: %w", key, err)
	}
	return nil
}

// mergeData builds the shallow merge for one status update. Absent update
// fields stay absent so the merge never clears what the other channel wrote.
func mergeData(upd models.StatusUpdate, next models.Status, now time.Time) map[string]interface{} {
	data := map[string]interface{}{
		"status":    string(next),
		"updatedAt": now,
	}
	if upd.TrackingID != "" {
		data["trackingId"] = upd.TrackingID
	}
	if upd.FaxKey != "" {
		data["faxKey"] = upd.FaxKey
	}
	if upd.RequesterEmail != "" {
		data["requesterEmail"] = upd.RequesterEmail
	}
	return data
}

// AppendAudit writes one append-only audit log entry.
func (s *Store) AppendAudit(ctx context.Context, entry models.AuditLogEntry) error {
	id := uuid.NewString()
	if _, err := s.client.Collection(s.audit).Doc(id).Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// GetStore looks up one directory record. Returns (nil, nil) when the store
// number is unknown.
func (s *Store) GetStore(ctx context.Context, storeNumber string) (*models.StoreRecord, error) {
	snap, err := s.client.Collection(s.stores).Doc(storeNumber).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %w", storeNumber, err)
	}

	var rec models.StoreRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode store %s: %w", storeNumber, err)
	}
	if rec.StoreNumber == "" {
		rec.StoreNumber = snap.Ref.ID
	}
	return &rec, nil
}

// ListStores reads the whole directory. Ordering is left to the caller.
func (s *Store) ListStores(ctx context.Context) ([]models.StoreRecord, error) {
	it := s.client.Collection(s.stores).Documents(ctx)
	defer it.Stop()

	var out []models.StoreRecord
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list stores: %w", err)
		}
		var rec models.StoreRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode store %s: %w", snap.Ref.ID, err)
		}
		if rec.StoreNumber == "" {
			rec.StoreNumber = snap.Ref.ID
		}
		out = append(out, rec)
	}
	return out, nil
}
