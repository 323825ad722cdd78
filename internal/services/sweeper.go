package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/storeops/faxbridge/internal/mail"
)

// completionSubjectFilter selects gateway completion notices in the inbox.
const completionSubjectFilter = "FAXDONE"

// sweepConcurrency bounds reconciliation fan-out within one pass.
const sweepConcurrency = 4

// Sweeper runs the fallback reconciliation channel: one pass per scheduler
// tick over the unread completion notices. Every fetched message is marked
// read at the end of the pass whether or not its writes succeeded, so
// consumption is at most once per message; a replayed notice is harmless
// because the merge is idempotent.
type Sweeper struct {
	reconciler *Reconciler
	dialInbox  func(ctx context.Context) (mail.Inbox, error)
}

// NewSweeper returns a Sweeper that dials a fresh inbox connection per pass.
func NewSweeper(reconciler *Reconciler, dialInbox func(ctx context.Context) (mail.Inbox, error)) *Sweeper {
	return &Sweeper{reconciler: reconciler, dialInbox: dialInbox}
}

// Run executes one sweep. Connectivity failures end the pass; the next
// scheduled run retries naturally.
func (s *Sweeper) Run(ctx context.Context) error {
	inbox, err := s.dialInbox(ctx)
	if err != nil {
		return fmt.Errorf("sweep aborted, inbox unavailable: %w", err)
	}
	defer inbox.Close()

	msgs, err := inbox.FetchUnread(ctx, completionSubjectFilter)
	if err != nil {
		return fmt.Errorf("sweep aborted, fetch failed: %w", err)
	}
	if len(msgs) == 0 {
		slog.Info("Sweep found no unread completion notices.")
		return nil
	}
	slog.Info("Sweep processing completion notices.", "count", len(msgs))

	var skipped, failed atomic.Int64
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(sweepConcurrency)
	for _, msg := range msgs {
		eg.Go(func() error {
			err := s.reconciler.ApplyPolledMessage(gctx, msg.Subject, msg.Body)
			var parseErr *ParseError
			switch {
			case err == nil:
			case errors.As(err, &parseErr):
				skipped.Add(1)
				slog.Warn("Skipping unparseable message.", "uid", msg.UID, "error", err)
			default:
				failed.Add(1)
				slog.Error("Reconciliation write failed; message will still be consumed.", "uid", msg.UID, "error", err)
			}
			return nil
		})
	}
	_ = eg.Wait()

	uids := make([]uint32, len(msgs))
	for i, msg := range msgs {
		uids[i] = msg.UID
	}
	if err := inbox.MarkRead(ctx, uids); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	slog.Info("Sweep complete.", "processed", len(msgs), "skipped", skipped.Load(), "failed", failed.Load())
	return nil
}
