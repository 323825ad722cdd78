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
	"github.com/storeops/faxbridge/internal/services"
)

var (
	handbookInstance *services.HandbookService
	once             sync.Once
	initErr          error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("ServeHandbook", serveHandbook)
}

// main is required by the Go Functions Framework.
func main() {}

func serveHandbook(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		handbookInstance, initErr = newHandbook(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	handbookInstance.ServeHTTP(w, r)
}

func newHandbook(ctx context.Context) (*services.HandbookService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewHandbook(client, cfg)
}
