package mocks

import (
	"context"

	"ticket-ledger/internal/model"

	"github.com/stretchr/testify/mock"
)

type JournalRepositoryMock struct {
	mock.Mock
}

func NewJournalRepositoryMock() *JournalRepositoryMock {
	return &JournalRepositoryMock{}
}

func (m *JournalRepositoryMock) Insert(ctx context.Context, record *model.TransferRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *JournalRepositoryMock) ListByEvent(ctx context.Context, organizer model.Identity, eventID int64) ([]*model.TransferRecord, error) {
	args := m.Called(ctx, organizer, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TransferRecord), args.Error(1)
}
