package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticket-ledger/internal/model"
	"ticket-ledger/internal/queue"
	repoMocks "ticket-ledger/internal/repository/mocks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJournalWorker_PersistsRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := repoMocks.NewJournalRepositoryMock()
	q := queue.NewTransferQueue(10)
	w := NewJournalWorker(repo, q)

	done := make(chan struct{})
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(r *model.TransferRecord) bool {
		return r.ID == "r-1"
	})).Run(func(args mock.Arguments) {
		close(done)
	}).Return(nil).Once()

	require.NoError(t, w.Start(ctx))
	require.NoError(t, q.PublishTransfer(ctx, &model.TransferRecord{ID: "r-1", Kind: model.TransferKindMint}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not persist the record")
	}
	repo.AssertExpectations(t)
}

func TestJournalWorker_RetriesOnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := repoMocks.NewJournalRepositoryMock()
	q := queue.NewTransferQueue(10)
	w := NewJournalWorker(repo, q)

	done := make(chan struct{})
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	repo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(done)
	}).Return(nil).Once()

	require.NoError(t, w.Start(ctx))
	require.NoError(t, q.PublishTransfer(ctx, &model.TransferRecord{ID: "r-2", Kind: model.TransferKindResale}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not retry after the first failure")
	}
	repo.AssertExpectations(t)
}
