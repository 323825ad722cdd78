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
	reconcilerInstance *services.Reconciler
	once               sync.Once
	initErr            error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("FaxStatusWebhook", faxStatusWebhook)
}

// main is required by the Go Functions Framework.
func main() {}

func faxStatusWebhook(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		reconcilerInstance, initErr = newReconciler(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}

	var req models.WebhookRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	if err := reconcilerInstance.ApplyWebhookUpdate(r.Context(), req.TrackingID, req.Status, req.FaxKey); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.WebhookResponse{Success: true})
}

func newReconciler(ctx context.Context) (*services.Reconciler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	return services.NewReconciler(store.New(client, cfg)), nil
}
