package repository

import (
	"context"

	"ticket-ledger/internal/model"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HoldingsRepository is the ownership index: one row per held ticket, keyed
// by (organizer, event, ticket) with the owner as an attribute. Moving a
// ticket updates that single row, so an owner's other tickets for the event
// are never disturbed.
type HoldingsRepository interface {
	ListByOwner(ctx context.Context, owner, organizer model.Identity, eventID int64) ([]int64, error)

	// Transaction methods
	Add(ctx context.Context, tx pgx.Tx, owner, organizer model.Identity, eventID, ticketID int64) error
	Move(ctx context.Context, tx pgx.Tx, newOwner, organizer model.Identity, eventID, ticketID int64) error
	CountByOwner(ctx context.Context, tx pgx.Tx, owner, organizer model.Identity, eventID int64) (int, error)
}

type HoldingsRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewHoldingsRepository(pool *pgxpool.Pool) HoldingsRepository {
	return &HoldingsRepositoryImpl{
		pool: pool,
	}
}

func (r *HoldingsRepositoryImpl) Add(ctx context.Context, tx pgx.Tx, owner, organizer model.Identity, eventID, ticketID int64) error {
	query := `
		INSERT INTO ticket_holdings (owner, organizer, event_id, ticket_id)
		VALUES ($1, $2, $3, $4)
	`

	_, err := tx.Exec(ctx, query, owner, organizer, eventID, ticketID)
	return err
}

func (r *HoldingsRepositoryImpl) Move(ctx context.Context, tx pgx.Tx, newOwner, organizer model.Identity, eventID, ticketID int64) error {
	query := `
		UPDATE ticket_holdings
		SET owner = $1
		WHERE organizer = $2 AND event_id = $3 AND ticket_id = $4
	`

	result, err := tx.Exec(ctx, query, newOwner, organizer, eventID, ticketID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

// CountByOwner runs inside the event transaction so the per-user cap is
// checked under the event lock.
func (r *HoldingsRepositoryImpl) CountByOwner(ctx context.Context, tx pgx.Tx, owner, organizer model.Identity, eventID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM ticket_holdings
		WHERE owner = $1 AND organizer = $2 AND event_id = $3
	`

	var count int
	err := tx.QueryRow(ctx, query, owner, organizer, eventID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *HoldingsRepositoryImpl) ListByOwner(ctx context.Context, owner, organizer model.Identity, eventID int64) ([]int64, error) {
	query := `
		SELECT ticket_id FROM ticket_holdings
		WHERE owner = $1 AND organizer = $2 AND event_id = $3
		ORDER BY ticket_id
	`

	rows, err := r.pool.Query(ctx, query, owner, organizer, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
