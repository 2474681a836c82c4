// Package worker keeps a mirror store in step with the primary ledger store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget/internal/core"
	"budget/internal/events"
	applog "budget/internal/log"
	"budget/internal/storage"

	"golang.org/x/sync/errgroup"
)

// SyncWorker copies the full record sequence from primary to mirror
type SyncWorker struct {
	primary storage.Store
	mirror  storage.Store
	logger  *applog.Logger
}

func NewSyncWorker(primary, mirror storage.Store, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		primary: primary,
		mirror:  mirror,
		logger:  logger.WithComponent(applog.ComponentWorker),
	}
}

// Sync rewrites the mirror when it differs from the primary. It reports
// whether anything was written.
func (w *SyncWorker) Sync(ctx context.Context) (bool, error) {
	start := time.Now()

	want, err := w.primary.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load primary %s: %w", w.primary.Name(), err)
	}
	have, err := w.mirror.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load mirror %s: %w", w.mirror.Name(), err)
	}

	if sameRecords(want, have) {
		w.logger.DebugContext(ctx, "Mirror already up to date",
			applog.FieldStore, w.mirror.Name(),
			applog.FieldCount, len(want))
		return false, nil
	}

	if err := w.mirror.Save(ctx, want); err != nil {
		return false, fmt.Errorf("save mirror %s: %w", w.mirror.Name(), err)
	}

	w.logger.InfoContext(ctx, "Mirror synced",
		applog.FieldOperation, applog.OpSync,
		applog.FieldStore, w.mirror.Name(),
		applog.FieldCount, len(want),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return true, nil
}

// HandleRecordAdded syncs after a notification. The message only triggers
// the sync; the primary store stays the source of truth.
func (w *SyncWorker) HandleRecordAdded(ctx context.Context, msg *events.RecordAdded) error {
	w.logger.InfoContext(ctx, "Processing record added message",
		applog.FieldMessageID, msg.ID,
		applog.FieldPosition, msg.Position)

	if _, err := w.Sync(ctx); err != nil {
		return fmt.Errorf("sync after message %s: %w", msg.ID, err)
	}
	return nil
}

// Run syncs once, then keeps syncing on every consumed message and every
// interval until ctx is cancelled. A nil consumer leaves only the ticker.
func (w *SyncWorker) Run(ctx context.Context, consumer events.Consumer, interval time.Duration) error {
	if _, err := w.Sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed",
			applog.NewFields().WithOperation(applog.OpStartup).WithError(err).ToSlice()...)
	}

	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeRecordAdded(ctx, w.HandleRecordAdded)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := w.Sync(ctx); err != nil && ctx.Err() == nil {
					w.logger.ErrorContext(ctx, "Periodic sync failed",
						applog.NewFields().WithOperation(applog.OpSync).WithError(err).ToSlice()...)
				}
			}
		}
	})

	return g.Wait()
}

func sameRecords(a, b []core.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
