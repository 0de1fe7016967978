// Package worker mirrors ledger events into a spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartcents/internal/amqp"
	"smartcents/internal/cache"
	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/sheets"
)

// Consumer delivers decoded event messages until ctx ends.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.EventMessage) error) error
}

// SyncWorker applies ledger events to a TransactionMirror. Redelivered events
// are skipped using a bounded set of recently applied event ids.
type SyncWorker struct {
	mirror sheets.TransactionMirror
	seen   *cache.LRUCache[time.Time]
	logger *log.Logger

	retryDelay time.Duration
}

func NewSyncWorker(mirror sheets.TransactionMirror, seen *cache.LRUCache[time.Time], logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Nop()
	}
	if seen == nil {
		seen = cache.NewLRUCache[time.Time](1024, time.Hour)
	}
	return &SyncWorker{
		mirror:     mirror,
		seen:       seen,
		logger:     logger.WithComponent(log.ComponentWorker),
		retryDelay: 5 * time.Second,
	}
}

// HandleEvent applies one message. A returned error makes the broker
// redeliver it.
func (w *SyncWorker) HandleEvent(ctx context.Context, msg *amqp.EventMessage) error {
	e := msg.Event
	if appliedAt, ok := w.seen.Get(e.ID); ok {
		w.logger.DebugContext(ctx, "Skipping duplicate event",
			log.FieldEvent, string(e.Kind),
			"event_id", e.ID,
			"applied_at", appliedAt)
		return nil
	}

	start := time.Now()
	var err error
	switch e.Kind {
	case core.EventTransactionRecorded:
		err = w.syncTransaction(ctx, e)
	case core.EventTransactionDeleted:
		err = w.deleteTransaction(ctx, e)
	case core.EventCategoryDeleted:
		err = w.clearCategory(ctx, e)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event", log.FieldEvent, string(e.Kind))
		return nil
	}
	if err != nil {
		return err
	}

	w.seen.Set(e.ID, time.Now())
	w.logger.WithUser(e.UserID).InfoContext(ctx, "Event applied",
		log.FieldEvent, string(e.Kind),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, e core.LedgerEvent) error {
	if e.Transaction == nil {
		return fmt.Errorf("%s event %s without transaction", e.Kind, e.ID)
	}
	ref, err := w.mirror.Append(ctx, sheets.NewRow(*e.Transaction, e.CategoryName))
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}
	w.logger.DebugContext(ctx, "Transaction mirrored",
		log.FieldTransactionID, e.Transaction.ID,
		log.FieldSheetsRef, ref)
	return nil
}

func (w *SyncWorker) deleteTransaction(ctx context.Context, e core.LedgerEvent) error {
	removed, err := w.mirror.DeleteTransaction(ctx, e.TransactionID)
	if err != nil {
		return fmt.Errorf("delete from sheets: %w", err)
	}
	if !removed {
		// recorded event may still be queued behind us, or was never mirrored
		w.logger.WarnContext(ctx, "No mirrored row for deleted transaction", log.FieldTransactionID, e.TransactionID)
	}
	return nil
}

func (w *SyncWorker) clearCategory(ctx context.Context, e core.LedgerEvent) error {
	n, err := w.mirror.ClearCategory(ctx, e.CategoryID)
	if err != nil {
		return fmt.Errorf("clear category in sheets: %w", err)
	}
	w.logger.DebugContext(ctx, "Category cleared from mirror", log.FieldCategoryID, e.CategoryID, log.FieldCount, n)
	return nil
}

// Run consumes until ctx is cancelled, restarting the consumer after broker
// failures.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	for {
		err := consumer.Consume(ctx, w.HandleEvent)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("consumer stopped")
		}
		w.logger.ErrorContext(ctx, "Consumer failed, restarting", log.FieldError, err, "retry_in", w.retryDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.retryDelay):
		}
	}
}
