package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/storeops/faxbridge/internal/config"
	"github.com/storeops/faxbridge/internal/gcp"
	"github.com/storeops/faxbridge/internal/mail"
	"github.com/storeops/faxbridge/internal/services"
	"github.com/storeops/faxbridge/internal/store"
)

var (
	sweeperInstance *services.Sweeper
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Cloud Scheduler publishes a tick to Pub/Sub roughly once per minute;
	// the framework routes the resulting CloudEvent here.
	functions.CloudEvent("SweepInbox", sweepInbox)
}

// main is required by the Go Functions Framework.
func main() {}

func sweepInbox(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		sweeperInstance, initErr = newSweeper(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	return sweeperInstance.Run(ctx)
}

func newSweeper(ctx context.Context) (*services.Sweeper, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}

	reconciler := services.NewReconciler(store.New(client, cfg))
	dial := func(ctx context.Context) (mail.Inbox, error) {
		return mail.DialInbox(cfg.IMAP)
	}
	return services.NewSweeper(reconciler, dial), nil
}
