package services

import (
	"context"
	"sort"

	"github.com/storeops/faxbridge/internal/models"
)

// DirectoryService is a read-only projection over the store directory.
type DirectoryService struct {
	records Records
}

// NewDirectory returns a DirectoryService over the given record store.
func NewDirectory(records Records) *DirectoryService {
	return &DirectoryService{records: records}
}

// ListStores returns all directory records ordered ascending by store number.
// Store numbers are external identifiers like "#005", so the order is lexical
// on the string, matching what the public listing has always produced.
func (d *DirectoryService) ListStores(ctx context.Context) ([]models.StoreRecord, error) {
	stores, err := d.records.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(stores, func(i, j int) bool {
		return stores[i].StoreNumber < stores[j].StoreNumber
	})
	return stores, nil
}
