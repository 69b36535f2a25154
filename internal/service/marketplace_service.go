package service

import (
	"context"

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

// MarketplaceService manages resale listings and resale purchases on top of
// the ticket store, enforcing the event's price ceiling.
type MarketplaceService interface {
	ListForResale(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64, price int64) error
	RemoveFromSale(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64) error
	BuyResaleTicket(ctx context.Context, buyer, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error)
	Listings(ctx context.Context, organizer model.Identity, eventID int64) ([]*model.Ticket, error)
}

type MarketplaceServiceImpl struct {
	pool         *pgxpool.Pool
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	holdingsRepo repository.HoldingsRepository
	payments     ledger.PaymentLedger
	transfers    queue.TransferQueue
	clock        clock.Clock
}

func NewMarketplaceService(
	pool *pgxpool.Pool,
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	holdingsRepo repository.HoldingsRepository,
	payments ledger.PaymentLedger,
	transfers queue.TransferQueue,
	clk clock.Clock,
) MarketplaceService {
	return &MarketplaceServiceImpl{
		pool:         pool,
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		holdingsRepo: holdingsRepo,
		payments:     payments,
		transfers:    transfers,
		clock:        clk,
	}
}

func (s *MarketplaceServiceImpl) ListForResale(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64, price int64) error {
	now := s.clock.Height()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindForUpdate(ctx, tx, organizer, eventID)
	if err != nil {
		return err
	}

	ticket, err := s.ticketRepo.FindForUpdate(ctx, tx, organizer, eventID, ticketID)
	if err != nil {
		return err
	}
	if err := ticket.CanList(caller, event, now, price); err != nil {
		return err
	}

	if err := s.ticketRepo.SetListing(ctx, tx, organizer, eventID, ticketID, true, price); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *MarketplaceServiceImpl) RemoveFromSale(ctx context.Context, caller, organizer model.Identity, eventID, ticketID int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.eventRepo.FindForUpdate(ctx, tx, organizer, eventID); err != nil {
		return err
	}

	ticket, err := s.ticketRepo.FindForUpdate(ctx, tx, organizer, eventID, ticketID)
	if err != nil {
		return err
	}
	if err := ticket.CanDelist(caller); err != nil {
		return err
	}

	if err := s.ticketRepo.SetListing(ctx, tx, organizer, eventID, ticketID, false, 0); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// BuyResaleTicket moves a listed ticket to the buyer: the listed price goes
// from buyer to seller, the sale state resets to neutral, and the holdings
// index is updated for both parties, all in one transaction. The used and
// checked-in flags are never reset by a sale.
func (s *MarketplaceServiceImpl) BuyResaleTicket(ctx context.Context, buyer, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error) {
	now := s.clock.Height()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindForUpdate(ctx, tx, organizer, eventID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.ticketRepo.FindForUpdate(ctx, tx, organizer, eventID, ticketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.CanResell(buyer, event, now); err != nil {
		return nil, err
	}

	held, err := s.holdingsRepo.CountByOwner(ctx, tx, buyer, organizer, eventID)
	if err != nil {
		return nil, err
	}
	if held >= model.MaxTicketsPerUser {
		return nil, apperrors.ErrExceedsMaxPerUser
	}

	seller := ticket.Owner
	salePrice := ticket.ResalePrice

	if err := s.payments.Transfer(ctx, tx, salePrice, buyer, seller); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Reassign(ctx, tx, organizer, eventID, ticketID, buyer); err != nil {
		return nil, err
	}
	if err := s.holdingsRepo.Move(ctx, tx, buyer, organizer, eventID, ticketID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishTransfer(ctx, &model.TransferRecord{
		Kind:      model.TransferKindResale,
		Organizer: organizer,
		EventID:   eventID,
		TicketID:  ticketID,
		FromOwner: seller,
		ToOwner:   buyer,
		Price:     salePrice,
		Height:    now,
	})

	ticket.Owner = buyer
	ticket.ForSale = false
	ticket.ResalePrice = 0

	return ticket, nil
}

func (s *MarketplaceServiceImpl) Listings(ctx context.Context, organizer model.Identity, eventID int64) ([]*model.Ticket, error) {
	return s.ticketRepo.ListForSale(ctx, organizer, eventID)
}

func (s *MarketplaceServiceImpl) publishTransfer(ctx context.Context, record *model.TransferRecord) {
	record.ID = uuid.New().String()
	if err := s.transfers.PublishTransfer(ctx, record); err != nil {
		logger.WithComponent("service").Warn("publish transfer record failed",
			zap.String("kind", string(record.Kind)), zap.Error(err))
	}
}
