package mocks

import (
	"context"

	"ticket-ledger/internal/model"

	"github.com/stretchr/testify/mock"
)

type RegistryServiceMock struct {
	mock.Mock
}

func NewRegistryServiceMock() *RegistryServiceMock {
	return &RegistryServiceMock{}
}

func (m *RegistryServiceMock) CreateEvent(ctx context.Context, caller model.Identity, params model.CreateEventParams) (*model.Event, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *RegistryServiceMock) UpdateEventInfo(ctx context.Context, caller, organizer model.Identity, eventID int64, params model.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, caller, organizer, eventID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *RegistryServiceMock) CancelEvent(ctx context.Context, caller, organizer model.Identity, eventID int64) error {
	args := m.Called(ctx, caller, organizer, eventID)
	return args.Error(0)
}

func (m *RegistryServiceMock) GetEvent(ctx context.Context, organizer model.Identity, eventID int64) (*model.Event, error) {
	args := m.Called(ctx, organizer, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *RegistryServiceMock) ListEvents(ctx context.Context, organizer model.Identity) ([]*model.Event, error) {
	args := m.Called(ctx, organizer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *RegistryServiceMock) Availability(ctx context.Context, organizer model.Identity, eventID int64) (int, error) {
	args := m.Called(ctx, organizer, eventID)
	return args.Int(0), args.Error(1)
}
