package repository

import (
	"context"
	"time"

	"ticket-ledger/internal/model"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	Find(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error)
	ListForSale(ctx context.Context, organizer model.Identity, eventID int64) ([]*model.Ticket, error)

	// Transaction methods
	Insert(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error)
	Reassign(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64, newOwner model.Identity) error
	SetListing(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64, forSale bool, price int64) error
	MarkUsed(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) error
	MarkCheckedIn(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `organizer, event_id, ticket_id, owner, resale_price,
	for_sale, used, checked_in, created_at, updated_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.Organizer,
		&ticket.EventID,
		&ticket.TicketID,
		&ticket.Owner,
		&ticket.ResalePrice,
		&ticket.ForSale,
		&ticket.Used,
		&ticket.CheckedIn,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) Insert(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (organizer, event_id, ticket_id, owner)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + ticketColumns

	row := tx.QueryRow(ctx, query,
		ticket.Organizer, ticket.EventID, ticket.TicketID, ticket.Owner,
	)

	return scanTicket(row)
}

func (r *TicketRepositoryImpl) Find(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE organizer = $1 AND event_id = $2 AND ticket_id = $3
	`

	return scanTicket(r.pool.QueryRow(ctx, query, organizer, eventID, ticketID))
}

func (r *TicketRepositoryImpl) FindForUpdate(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE organizer = $1 AND event_id = $2 AND ticket_id = $3
		FOR UPDATE
	`

	return scanTicket(tx.QueryRow(ctx, query, organizer, eventID, ticketID))
}

func (r *TicketRepositoryImpl) ListForSale(ctx context.Context, organizer model.Identity, eventID int64) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE organizer = $1 AND event_id = $2 AND for_sale = TRUE
		ORDER BY ticket_id
	`

	rows, err := r.pool.Query(ctx, query, organizer, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

// Reassign moves the ticket to a new owner and resets the sale state. The
// used and checked-in flags are never touched here: they are one-way.
func (r *TicketRepositoryImpl) Reassign(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64, newOwner model.Identity) error {
	query := `
		UPDATE tickets
		SET owner = $1, for_sale = FALSE, resale_price = 0, updated_at = $2
		WHERE organizer = $3 AND event_id = $4 AND ticket_id = $5
	`

	result, err := tx.Exec(ctx, query, newOwner, time.Now().UTC(), organizer, eventID, ticketID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

func (r *TicketRepositoryImpl) SetListing(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64, forSale bool, price int64) error {
	query := `
		UPDATE tickets
		SET for_sale = $1, resale_price = $2, updated_at = $3
		WHERE organizer = $4 AND event_id = $5 AND ticket_id = $6
	`

	result, err := tx.Exec(ctx, query, forSale, price, time.Now().UTC(), organizer, eventID, ticketID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

// MarkUsed sets the redeemed flag, guarded so a redeemed ticket cannot be
// redeemed twice.
func (r *TicketRepositoryImpl) MarkUsed(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) error {
	query := `
		UPDATE tickets
		SET used = TRUE, for_sale = FALSE, resale_price = 0, updated_at = $1
		WHERE organizer = $2 AND event_id = $3 AND ticket_id = $4 AND used = FALSE
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), organizer, eventID, ticketID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrAlreadyUsed
	}

	return nil
}

// MarkCheckedIn sets the attendance flag, independent of used and for-sale,
// except that a checked-in ticket leaves the resale market.
func (r *TicketRepositoryImpl) MarkCheckedIn(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) error {
	query := `
		UPDATE tickets
		SET checked_in = TRUE, for_sale = FALSE, resale_price = 0, updated_at = $1
		WHERE organizer = $2 AND event_id = $3 AND ticket_id = $4 AND checked_in = FALSE
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), organizer, eventID, ticketID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrAlreadyCheckedIn
	}

	return nil
}
