package queue

import (
	"context"

	"ticket-ledger/internal/model"
)

type Delivery struct {
	Data *model.TransferRecord
	Ack  func()
	Nack func(requeue bool)
}

// TransferQueue carries committed ownership changes to the journal worker.
type TransferQueue interface {
	PublishTransfer(ctx context.Context, record *model.TransferRecord) error
	SubscribeTransfers(ctx context.Context) (<-chan Delivery, error)
}

// TransferQueueImpl is the in-memory queue, backed by a buffered channel.
type TransferQueueImpl struct {
	ch chan *model.TransferRecord
}

func NewTransferQueue(bufferSize int) TransferQueue {
	return &TransferQueueImpl{
		ch: make(chan *model.TransferRecord, bufferSize),
	}
}

func (q *TransferQueueImpl) PublishTransfer(ctx context.Context, record *model.TransferRecord) error {
	q.ch <- record
	return nil
}

func (q *TransferQueueImpl) SubscribeTransfers(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case record, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: record,
					Ack:  func() { /* nothing to do for the in-memory queue */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- record
						}
					},
				}
			}
		}
	}()

	return out, nil
}
