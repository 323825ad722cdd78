package services

import (
	"context"

	"github.com/storeops/faxbridge/internal/models"
)

// Records is the record-store surface the services depend on. The Firestore
// implementation lives in internal/store; tests substitute an in-memory fake.
type Records interface {
	// CreatePending writes a new Pending job keyed by its tracking ID.
	CreatePending(ctx context.Context, job models.FaxJob) error

	// ApplyUpdate merge-writes one status update onto the job keyed by key,
	// upserting if absent. Transitions off a terminal status are dropped.
	ApplyUpdate(ctx context.Context, key string, upd models.StatusUpdate) error

	// AppendAudit records one completed send attempt.
	AppendAudit(ctx context.Context, entry models.AuditLogEntry) error

	// GetStore resolves a store number, (nil, nil) when unknown.
	GetStore(ctx context.Context, storeNumber string) (*models.StoreRecord, error)

	// ListStores reads the whole directory, unordered.
	ListStores(ctx context.Context) ([]models.StoreRecord, error)
}
