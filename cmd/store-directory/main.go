package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/storeops/faxbridge/internal/config"
	"github.com/storeops/faxbridge/internal/gcp"
	"github.com/storeops/faxbridge/internal/httpx"
	"github.com/storeops/faxbridge/internal/models"
	"github.com/storeops/faxbridge/internal/services"
	"github.com/storeops/faxbridge/internal/store"
)

var (
	directoryInstance *services.DirectoryService
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("ListStores", listStores)
}

// main is required by the Go Functions Framework.
func main() {}

func listStores(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		directoryInstance, initErr = newDirectory(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}

	stores, err := directoryInstance.ListStores(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ListStoresResponse{
		Success: true,
		Count:   len(stores),
		Stores:  stores,
	})
}

func newDirectory(ctx context.Context) (*services.DirectoryService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	return services.NewDirectory(store.New(client, cfg)), nil
}
