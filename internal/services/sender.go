package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/storeops/faxbridge/internal/config"
	"github.com/storeops/faxbridge/internal/mail"
	"github.com/storeops/faxbridge/internal/models"
)

const minFaxDigits = 10

// SenderService orchestrates one send request: validate, resolve the
// destination, create the pending job, dispatch the gateway email and append
// the audit entry. Side effects are sequenced, not transactional; a dispatch
// failure after the pending job exists is surfaced but never rolled back,
// since the reconciliation channels are the system of record for the outcome.
type SenderService struct {
	records  Records
	mailer   mail.Sender
	tracker  *Tracker
	validate *validatorv10.Validate

	gatewayAddress string
	senderAddress  string
}

// NewSender wires a SenderService. An unset gateway address is not an error
// here; it surfaces as a ConfigError on the first send so the function still
// cold-starts and reports something actionable.
func NewSender(cfg *config.Config, records Records, mailer mail.Sender) *SenderService {
	return &SenderService{
		records:        records,
		mailer:         mailer,
		tracker:        NewTracker(),
		validate:       validatorv10.New(),
		gatewayAddress: cfg.GatewayAddress,
		senderAddress:  cfg.SenderAddress,
	}
}

// SendToStore faxes a document to a store resolved through the directory.
func (s *SenderService) SendToStore(ctx context.Context, req *models.SendStoreFaxRequest) (*models.SendStoreFaxResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Msg: "storeNumber, pdfBase64 and fileName are required"}
	}
	payload, err := decodePDFPayload(req.PDFBase64)
	if err != nil {
		return nil, err
	}

	storeRec, err := s.records.GetStore(ctx, req.StoreNumber)
	if err != nil {
		return nil, err
	}
	if storeRec == nil {
		return nil, &NotFoundError{Msg: fmt.Sprintf("store %s not found", req.StoreNumber)}
	}
	if s.gatewayAddress == "" {
		return nil, &ConfigError{Msg: "fax gateway address is not configured"}
	}

	trackingID := s.tracker.GenerateTrackingID()
	logCtx := slog.With("trackingId", trackingID, "storeNumber", storeRec.StoreNumber)

	if err := s.records.CreatePending(ctx, models.FaxJob{
		TrackingID:     trackingID,
		StoreNumber:    storeRec.StoreNumber,
		RequesterEmail: s.senderAddress,
	}); err != nil {
		return nil, err
	}
	logCtx.Info("Created pending fax job.")

	// The store number leads the subject so the gateway's parser can take
	// everything after '#' as the destination.
	subject := fmt.Sprintf("%s %s", storeRec.StoreNumber, trackingID)
	body := fmt.Sprintf("Fax request for store %s (%s).\nDocument: %s\nTracking ID: %s\n",
		storeRec.StoreNumber, storeRec.Location, req.FileName, trackingID)

	if err := s.dispatch(ctx, logCtx, subject, body, req.FileName, payload); err != nil {
		return nil, err
	}

	if err := s.records.AppendAudit(ctx, models.AuditLogEntry{
		StoreNumber: storeRec.StoreNumber,
		Location:    storeRec.Location,
		FaxNumber:   storeRec.FaxNumber,
		FileName:    req.FileName,
		Type:        req.Type,
		SentAt:      time.Now().UTC(),
		Status:      "sent",
	}); err != nil {
		return nil, err
	}

	return &models.SendStoreFaxResponse{
		Success:    true,
		Message:    fmt.Sprintf("Fax queued for %s", storeRec.Location),
		TrackingID: trackingID,
		Store: models.StoreBrief{
			StoreNumber: storeRec.StoreNumber,
			Location:    storeRec.Location,
		},
	}, nil
}

// SendToNumber faxes a document directly to a phone number.
func (s *SenderService) SendToNumber(ctx context.Context, req *models.SendNumberFaxRequest) (*models.SendNumberFaxResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Msg: "faxNumber, pdfBase64 and fileName are required"}
	}
	payload, err := decodePDFPayload(req.PDFBase64)
	if err != nil {
		return nil, err
	}

	digits := cleanFaxNumber(req.FaxNumber)
	if len(digits) < minFaxDigits {
		return nil, &ValidationError{Msg: fmt.Sprintf("fax number must contain at least %d digits", minFaxDigits)}
	}
	if s.gatewayAddress == "" {
		return nil, &ConfigError{Msg: "fax gateway address is not configured"}
	}

	trackingID := s.tracker.GenerateTrackingID()
	logCtx := slog.With("trackingId", trackingID, "faxNumber", digits)

	if err := s.records.CreatePending(ctx, models.FaxJob{
		TrackingID:     trackingID,
		FaxNumber:      digits,
		RequesterEmail: s.senderAddress,
	}); err != nil {
		return nil, err
	}
	logCtx.Info("Created pending fax job.")

	subject := fmt.Sprintf("Fax#%s %s", digits, trackingID)
	body := fmt.Sprintf("Fax request for %s.\nDocument: %s\nTracking ID: %s\n",
		digits, req.FileName, trackingID)

	if err := s.dispatch(ctx, logCtx, subject, body, req.FileName, payload); err != nil {
		return nil, err
	}

	if err := s.records.AppendAudit(ctx, models.AuditLogEntry{
		FaxNumber: digits,
		FileName:  req.FileName,
		Type:      req.Type,
		SentAt:    time.Now().UTC(),
		Status:    "sent",
	}); err != nil {
		return nil, err
	}

	return &models.SendNumberFaxResponse{
		Success:    true,
		Message:    fmt.Sprintf("Fax queued for %s", digits),
		TrackingID: trackingID,
		FaxNumber:  digits,
	}, nil
}

func (s *SenderService) dispatch(ctx context.Context, logCtx *slog.Logger, subject, body, fileName string, payload []byte) error {
	err := s.mailer.Send(ctx, mail.Message{
		To:             s.gatewayAddress,
		Subject:        subject,
		Body:           body,
		AttachmentName: fileName,
		Attachment:     payload,
	})
	if err != nil {
		logCtx.Error("Gateway dispatch failed; pending job left in place.", "error", err)
		return &DispatchError{Err: err}
	}
	logCtx.Info("Dispatched fax email to gateway.", "subject", subject)
	return nil
}

// decodePDFPayload decodes the base64 payload and checks it is a readable
// PDF, so a corrupt upload is rejected before a job record exists for it.
func decodePDFPayload(encoded string) ([]byte, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &ValidationError{Msg: "pdfBase64 is not valid base64"}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(payload), conf); err != nil {
		return nil, &ValidationError{Msg: "payload is not a valid PDF"}
	}
	return payload, nil
}

// cleanFaxNumber strips everything but digits. Idempotent by construction.
func cleanFaxNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
