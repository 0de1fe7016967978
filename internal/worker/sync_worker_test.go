package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcents/internal/amqp"
	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/sheets"
	"smartcents/internal/sheets/memory"
)

func recorded(eventID, txID, categoryID, categoryName string) *amqp.EventMessage {
	tx := &core.Transaction{
		ID:     txID,
		Amount: decimal.RequireFromString("10"),
		Type:   core.Expense,
		Date:   core.NewDate(2024, 3, 1),
		UserID: "u1",
	}
	if categoryID != "" {
		tx.CategoryID = &categoryID
	}
	return amqp.NewEventMessage(core.LedgerEvent{
		ID:           eventID,
		Kind:         core.EventTransactionRecorded,
		UserID:       "u1",
		Transaction:  tx,
		CategoryName: categoryName,
	})
}

func TestHandleEventAppliesLedgerChanges(t *testing.T) {
	mirror := memory.New()
	w := NewSyncWorker(mirror, nil, log.Nop())
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, recorded("e1", "t1", "food", "Food")))
	require.NoError(t, w.HandleEvent(ctx, recorded("e2", "t2", "food", "Food")))
	require.NoError(t, w.HandleEvent(ctx, recorded("e3", "t3", "", "")))

	rows := mirror.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "Food", rows[0].Category)
	assert.Equal(t, "2024-03-01", rows[0].Date)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewEventMessage(core.LedgerEvent{
		ID: "e4", Kind: core.EventCategoryDeleted, UserID: "u1", CategoryID: "food",
	})))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewEventMessage(core.LedgerEvent{
		ID: "e5", Kind: core.EventTransactionDeleted, UserID: "u1", TransactionID: "t2",
	})))

	rows = mirror.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "t1", rows[0].TransactionID)
	assert.Empty(t, rows[0].Category)
	assert.Equal(t, "t3", rows[1].TransactionID)
}

type countingMirror struct {
	sheets.TransactionMirror
	appends int32
	fail    bool
}

func (m *countingMirror) Append(ctx context.Context, r sheets.Row) (string, error) {
	atomic.AddInt32(&m.appends, 1)
	if m.fail {
		return "", errors.New("quota exceeded")
	}
	return m.TransactionMirror.Append(ctx, r)
}

func TestHandleEventSkipsDuplicates(t *testing.T) {
	mirror := &countingMirror{TransactionMirror: memory.New()}
	w := NewSyncWorker(mirror, nil, log.Nop())
	ctx := context.Background()

	msg := recorded("e1", "t1", "", "")
	require.NoError(t, w.HandleEvent(ctx, msg))
	require.NoError(t, w.HandleEvent(ctx, msg))
	assert.Equal(t, int32(1), atomic.LoadInt32(&mirror.appends))
}

func TestHandleEventFailureIsRetryable(t *testing.T) {
	mirror := &countingMirror{TransactionMirror: memory.New(), fail: true}
	w := NewSyncWorker(mirror, nil, log.Nop())
	ctx := context.Background()

	msg := recorded("e1", "t1", "", "")
	assert.Error(t, w.HandleEvent(ctx, msg))

	mirror.fail = false
	require.NoError(t, w.HandleEvent(ctx, msg), "a failed event is not remembered as applied")
	assert.Equal(t, int32(2), atomic.LoadInt32(&mirror.appends))
}

type flakyConsumer struct {
	calls int32
	msg   *amqp.EventMessage
	done  chan struct{}
}

func (c *flakyConsumer) Consume(ctx context.Context, handler func(context.Context, *amqp.EventMessage) error) error {
	if atomic.AddInt32(&c.calls, 1) == 1 {
		return errors.New("message channel closed")
	}
	if err := handler(ctx, c.msg); err != nil {
		return err
	}
	close(c.done)
	<-ctx.Done()
	return ctx.Err()
}

func TestRunRestartsConsumer(t *testing.T) {
	mirror := memory.New()
	w := NewSyncWorker(mirror, nil, log.Nop())
	w.retryDelay = time.Millisecond

	consumer := &flakyConsumer{msg: recorded("e1", "t1", "", ""), done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx, consumer) }()

	select {
	case <-consumer.done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer was not restarted")
	}
	cancel()
	require.NoError(t, <-errc)
	assert.Len(t, mirror.Rows(), 1)
}
