package service

import (
	"context"

	"ticket-ledger/internal/cache"
	"ticket-ledger/internal/clock"
	"ticket-ledger/internal/model"
	"ticket-ledger/internal/repository"
	apperrors "ticket-ledger/pkg/app_errors"
	"ticket-ledger/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RegistryService owns event records: organizer-only mutation, capacity and
// date invariants, per-organizer id assignment.
type RegistryService interface {
	CreateEvent(ctx context.Context, caller model.Identity, params model.CreateEventParams) (*model.Event, error)
	UpdateEventInfo(ctx context.Context, caller, organizer model.Identity, eventID int64, params model.UpdateEventParams) (*model.Event, error)
	CancelEvent(ctx context.Context, caller, organizer model.Identity, eventID int64) error
	GetEvent(ctx context.Context, organizer model.Identity, eventID int64) (*model.Event, error)
	ListEvents(ctx context.Context, organizer model.Identity) ([]*model.Event, error)
	Availability(ctx context.Context, organizer model.Identity, eventID int64) (int, error)
}

type RegistryServiceImpl struct {
	pool         *pgxpool.Pool
	repo         repository.EventRepository
	availability cache.AvailabilityCache
	clock        clock.Clock
}

func NewRegistryService(
	pool *pgxpool.Pool,
	repo repository.EventRepository,
	availability cache.AvailabilityCache,
	clk clock.Clock,
) RegistryService {
	return &RegistryServiceImpl{
		pool:         pool,
		repo:         repo,
		availability: availability,
		clock:        clk,
	}
}

func (s *RegistryServiceImpl) CreateEvent(ctx context.Context, caller model.Identity, params model.CreateEventParams) (*model.Event, error) {
	if err := params.Validate(s.clock.Height()); err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	id, err := s.repo.NextEventID(ctx, tx, caller)
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		Organizer:     caller,
		ID:            id,
		Name:          params.Name,
		Description:   params.Description,
		Venue:         params.Venue,
		EventHeight:   params.EventHeight,
		BasePrice:     params.BasePrice,
		Capacity:      params.Capacity,
		ResaleAllowed: params.ResaleAllowed,
		ResaleCeiling: params.ResaleCeiling,
	}

	created, err := s.repo.Create(ctx, tx, event)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.warmAvailability(ctx, created)

	return created, nil
}

func (s *RegistryServiceImpl) UpdateEventInfo(ctx context.Context, caller, organizer model.Identity, eventID int64, params model.UpdateEventParams) (*model.Event, error) {
	if err := params.Validate(s.clock.Height()); err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.repo.FindForUpdate(ctx, tx, organizer, eventID)
	if err != nil {
		return nil, err
	}
	if event.Organizer != caller {
		return nil, apperrors.ErrUnauthorized
	}

	updated, err := s.repo.UpdateInfo(ctx, tx, organizer, eventID, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// CancelEvent soft-deletes: already-sold tickets are neither refunded nor
// invalidated, and cancellation is only possible before the event date.
func (s *RegistryServiceImpl) CancelEvent(ctx context.Context, caller, organizer model.Identity, eventID int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	event, err := s.repo.FindForUpdate(ctx, tx, organizer, eventID)
	if err != nil {
		return err
	}
	if event.Organizer != caller {
		return apperrors.ErrUnauthorized
	}
	if !event.IsCurrent(s.clock.Height()) {
		return apperrors.ErrEventExpired
	}

	if err := s.repo.Deactivate(ctx, tx, organizer, eventID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if err := s.availability.Invalidate(ctx, organizer, eventID); err != nil {
		logger.WithComponent("service").Warn("invalidate availability failed", zap.Error(err))
	}

	return nil
}

func (s *RegistryServiceImpl) GetEvent(ctx context.Context, organizer model.Identity, eventID int64) (*model.Event, error) {
	return s.repo.Find(ctx, organizer, eventID)
}

func (s *RegistryServiceImpl) ListEvents(ctx context.Context, organizer model.Identity) ([]*model.Event, error) {
	return s.repo.ListByOrganizer(ctx, organizer)
}

// Availability serves remaining capacity from Redis, falling back to the
// database on a miss and re-warming the cache.
func (s *RegistryServiceImpl) Availability(ctx context.Context, organizer model.Identity, eventID int64) (int, error) {
	remaining, err := s.availability.Get(ctx, organizer, eventID)
	if err == nil {
		return remaining, nil
	}

	event, err := s.repo.Find(ctx, organizer, eventID)
	if err != nil {
		return 0, err
	}

	s.warmAvailability(ctx, event)

	return event.Remaining(), nil
}

// warmAvailability is best effort: the database stays the authority and a
// cold cache only costs a fallback read.
func (s *RegistryServiceImpl) warmAvailability(ctx context.Context, event *model.Event) {
	if err := s.availability.Warm(ctx, event.Organizer, event.ID, event.Remaining()); err != nil {
		logger.WithComponent("service").Warn("warm availability failed",
			zap.String("organizer", event.Organizer), zap.Int64("event_id", event.ID), zap.Error(err))
	}
}
