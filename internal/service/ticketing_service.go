package service

import (
	"context"

	"ticket-ledger/internal/authcode"
	"ticket-ledger/internal/cache"
	"ticket-ledger/internal/clock"
	"ticket-ledger/internal/ledger"
	"ticket-ledger/internal/model"
	"ticket-ledger/internal/queue"
	"ticket-ledger/internal/repository"
	apperrors "ticket-ledger/pkg/app_errors"
	"ticket-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TicketingService owns the ticket state machine: minting at primary sale,
// gift transfer, redemption and check-in. Every mutating operation runs in
// one transaction that locks the event row first, so payment, ownership, the
// holdings index and the auth code commit or abort as a unit.
type TicketingService interface {
	// BuyTicket mints the next ticket for the event and returns it together
	// with its authentication code. The code is returned exactly once.
	BuyTicket(ctx context.Context, buyer, organizer model.Identity, eventID int64) (*model.Ticket, string, error)
	TransferTicket(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64, recipient model.Identity) error
	ValidateTicket(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64, code string) error
	CheckInAttendee(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64) error

	GetTicket(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error)
	TicketsOf(ctx context.Context, owner, organizer model.Identity, eventID int64) ([]int64, error)
	IsTicketValid(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (bool, error)
	VerifyAuthCode(ctx context.Context, organizer model.Identity, eventID, ticketID int64, code string) (bool, error)
}

type TicketingServiceImpl struct {
	pool         *pgxpool.Pool
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	authRepo     repository.AuthCodeRepository
	holdingsRepo repository.HoldingsRepository
	payments     ledger.PaymentLedger
	availability cache.AvailabilityCache
	transfers    queue.TransferQueue
	clock        clock.Clock
}

func NewTicketingService(
	pool *pgxpool.Pool,
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	authRepo repository.AuthCodeRepository,
	holdingsRepo repository.HoldingsRepository,
	payments ledger.PaymentLedger,
	availability cache.AvailabilityCache,
	transfers queue.TransferQueue,
	clk clock.Clock,
) TicketingService {
	return &TicketingServiceImpl{
		pool:         pool,
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		authRepo:     authRepo,
		holdingsRepo: holdingsRepo,
		payments:     payments,
		availability: availability,
		transfers:    transfers,
		clock:        clk,
	}
}

func (s *TicketingServiceImpl) BuyTicket(ctx context.Context, buyer, organizer model.Identity, eventID int64) (*model.Ticket, string, error) {
	now := s.clock.Height()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindForUpdate(ctx, tx, organizer, eventID)
	if err != nil {
		return nil, "", err
	}
	// cancelled events do not exist for buyers
	if !event.Active {
		return nil, "", apperrors.ErrEventNotFound
	}
	if !event.IsCurrent(now) {
		return nil, "", apperrors.ErrEventExpired
	}

	held, err := s.holdingsRepo.CountByOwner(ctx, tx, buyer, organizer, eventID)
	if err != nil {
		return nil, "", err
	}
	if held >= model.MaxTicketsPerUser {
		return nil, "", apperrors.ErrExceedsMaxPerUser
	}

	if err := s.payments.Transfer(ctx, tx, event.BasePrice, buyer, event.Organizer); err != nil {
		return nil, "", err
	}

	sold, err := s.eventRepo.IncrementSold(ctx, tx, organizer, eventID)
	if err != nil {
		return nil, "", err
	}

	ticket, err := s.ticketRepo.Insert(ctx, tx, &model.Ticket{
		Organizer: organizer,
		EventID:   eventID,
		TicketID:  int64(sold),
		Owner:     buyer,
	})
	if err != nil {
		return nil, "", err
	}

	code := authcode.Issue(organizer, eventID, ticket.TicketID, now)
	err = s.authRepo.Insert(ctx, tx, &repository.AuthCode{
		Organizer:    organizer,
		EventID:      eventID,
		TicketID:     ticket.TicketID,
		Code:         code,
		IssuedHeight: now,
	})
	if err != nil {
		return nil, "", err
	}

	if err := s.holdingsRepo.Add(ctx, tx, buyer, organizer, eventID, ticket.TicketID); err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", err
	}

	if err := s.availability.Decrement(ctx, organizer, eventID); err != nil {
		logger.WithComponent("service").Warn("decrement availability failed", zap.Error(err))
	}
	s.publishTransfer(ctx, &model.TransferRecord{
		Kind:      model.TransferKindMint,
		Organizer: organizer,
		EventID:   eventID,
		TicketID:  ticket.TicketID,
		FromOwner: event.Organizer,
		ToOwner:   buyer,
		Price:     event.BasePrice,
		Height:    now,
	})

	return ticket, code, nil
}

// TransferTicket is the gift transfer: no payment, owner-initiated, blocked
// once the ticket is used or checked in.
func (s *TicketingServiceImpl) TransferTicket(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64, recipient model.Identity) error {
	now := s.clock.Height()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// the event lock is the ordering point for everything touching this event
	if _, err := s.eventRepo.FindForUpdate(ctx, tx, organizer, eventID); err != nil {
		return err
	}

	ticket, err := s.ticketRepo.FindForUpdate(ctx, tx, organizer, eventID, ticketID)
	if err != nil {
		return err
	}
	if err := ticket.CanTransfer(caller, recipient); err != nil {
		return err
	}

	held, err := s.holdingsRepo.CountByOwner(ctx, tx, recipient, organizer, eventID)
	if err != nil {
		return err
	}
	if held >= model.MaxTicketsPerUser {
		return apperrors.ErrExceedsMaxPerUser
	}

	if err := s.ticketRepo.Reassign(ctx, tx, organizer, eventID, ticketID, recipient); err != nil {
		return err
	}
	if err := s.holdingsRepo.Move(ctx, tx, recipient, organizer, eventID, ticketID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.publishTransfer(ctx, &model.TransferRecord{
		Kind:      model.TransferKindGift,
		Organizer: organizer,
		EventID:   eventID,
		TicketID:  ticketID,
		FromOwner: caller,
		ToOwner:   recipient,
		Price:     0,
		Height:    now,
	})

	return nil
}

// ValidateTicket redeems a ticket: organizer-only, exact auth-code match,
// at most once per ticket.
func (s *TicketingServiceImpl) ValidateTicket(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64, code string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindForUpdate(ctx, tx, organizer, eventID)
	if err != nil {
		return err
	}
	if event.Organizer != caller {
		return apperrors.ErrUnauthorized
	}

	ticket, err := s.ticketRepo.FindForUpdate(ctx, tx, organizer, eventID, ticketID)
	if err != nil {
		return err
	}
	if err := ticket.CanRedeem(); err != nil {
		return err
	}

	stored, err := s.authRepo.FindForShare(ctx, tx, organizer, eventID, ticketID)
	if err != nil {
		return err
	}
	if !authcode.Verify(stored.Code, code) {
		return apperrors.ErrUnauthorized
	}

	if err := s.ticketRepo.MarkUsed(ctx, tx, organizer, eventID, ticketID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CheckInAttendee flips the attendance flag. Independent of redemption: a
// ticket can be redeemed and checked in, in either order, each exactly once.
func (s *TicketingServiceImpl) CheckInAttendee(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindForUpdate(ctx, tx, organizer, eventID)
	if err != nil {
		return err
	}
	if event.Organizer != caller {
		return apperrors.ErrUnauthorized
	}

	ticket, err := s.ticketRepo.FindForUpdate(ctx, tx, organizer, eventID, ticketID)
	if err != nil {
		return err
	}
	if err := ticket.CanCheckIn(); err != nil {
		return err
	}

	if err := s.ticketRepo.MarkCheckedIn(ctx, tx, organizer, eventID, ticketID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *TicketingServiceImpl) GetTicket(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error) {
	return s.ticketRepo.Find(ctx, organizer, eventID, ticketID)
}

func (s *TicketingServiceImpl) TicketsOf(ctx context.Context, owner, organizer model.Identity, eventID int64) ([]int64, error) {
	return s.holdingsRepo.ListByOwner(ctx, owner, organizer, eventID)
}

func (s *TicketingServiceImpl) IsTicketValid(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (bool, error) {
	event, err := s.eventRepo.Find(ctx, organizer, eventID)
	if err != nil {
		return false, err
	}
	ticket, err := s.ticketRepo.Find(ctx, organizer, eventID, ticketID)
	if err != nil {
		return false, err
	}
	return ticket.IsValid(event), nil
}

// VerifyAuthCode is the read-only comparison; it never redeems.
func (s *TicketingServiceImpl) VerifyAuthCode(ctx context.Context, organizer model.Identity, eventID, ticketID int64, code string) (bool, error) {
	stored, err := s.authRepo.Find(ctx, organizer, eventID, ticketID)
	if err != nil {
		return false, err
	}
	return authcode.Verify(stored.Code, code), nil
}

// publishTransfer feeds the audit journal. Best effort after commit: the
// journal is derived state, the ledger tables are the authority.
func (s *TicketingServiceImpl) publishTransfer(ctx context.Context, record *model.TransferRecord) {
	record.ID = uuid.New().String()
	if err := s.transfers.PublishTransfer(ctx, record); err != nil {
		logger.WithComponent("service").Warn("publish transfer record failed",
			zap.String("kind", string(record.Kind)), zap.Error(err))
	}
}
