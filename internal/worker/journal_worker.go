package worker

import (
	"context"

	"ticket-ledger/internal/queue"
	"ticket-ledger/internal/repository"
	"ticket-ledger/pkg/logger"

	"go.uber.org/zap"
)

// JournalWorker drains the transfer queue into the audit journal.
type JournalWorker interface {
	Start(ctx context.Context) error
}

type JournalWorkerImpl struct {
	repo  repository.JournalRepository
	queue queue.TransferQueue
}

func NewJournalWorker(repo repository.JournalRepository, queue queue.TransferQueue) JournalWorker {
	return &JournalWorkerImpl{
		repo:  repo,
		queue: queue,
	}
}

func (w *JournalWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeTransfers(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("journal-worker")
		for msg := range msgs {
			if err := w.repo.Insert(ctx, msg.Data); err != nil {
				log.Warn("persist transfer record failed, requeueing",
					zap.String("record_id", msg.Data.ID), zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
