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
	"github.com/storeops/faxbridge/internal/mail"
	"github.com/storeops/faxbridge/internal/models"
	"github.com/storeops/faxbridge/internal/services"
	"github.com/storeops/faxbridge/internal/store"
)

var (
	senderInstance *services.SenderService
	once           sync.Once
	initErr        error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("SendNumberFax", sendNumberFax)
}

// main is required by the Go Functions Framework.
func main() {}

func sendNumberFax(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		senderInstance, initErr = newSender(context.Background())
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

	var req models.SendNumberFaxRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	res, err := senderInstance.SendToNumber(r.Context(), &req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func newSender(ctx context.Context) (*services.SenderService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	mailer, err := mail.NewSMTPSender(cfg.SMTP, cfg.SenderAddress)
	if err != nil {
		return nil, err
	}
	return services.NewSender(cfg, store.New(client, cfg), mailer), nil
}
