package queue

import (
	"context"
	"testing"
	"time"

	"ticket-ledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferQueue_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewTransferQueue(10)

	record := &model.TransferRecord{
		ID:        "r-1",
		Kind:      model.TransferKindMint,
		Organizer: "org-1",
		EventID:   1,
		TicketID:  1,
		ToOwner:   "alice",
		Price:     100,
	}

	require.NoError(t, q.PublishTransfer(ctx, record))

	msgs, err := q.SubscribeTransfers(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "r-1", msg.Data.ID)
		assert.Equal(t, model.TransferKindMint, msg.Data.Kind)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestTransferQueue_NackRequeues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewTransferQueue(10)

	record := &model.TransferRecord{ID: "r-2", Kind: model.TransferKindGift}
	require.NoError(t, q.PublishTransfer(ctx, record))

	msgs, err := q.SubscribeTransfers(ctx)
	require.NoError(t, err)

	first := <-msgs
	first.Nack(true)

	select {
	case second := <-msgs:
		assert.Equal(t, "r-2", second.Data.ID)
		second.Ack()
	case <-time.After(time.Second):
		t.Fatal("nacked message was not redelivered")
	}
}

func TestTransferQueue_SubscribeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	q := NewTransferQueue(1)
	msgs, err := q.SubscribeTransfers(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-msgs:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop after cancel")
	}
}
