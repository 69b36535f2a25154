package repository

import (
	"context"

	"ticket-ledger/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JournalRepository persists transfer records written by the journal worker.
// The journal is append-only and sits outside the operation transaction.
type JournalRepository interface {
	Insert(ctx context.Context, record *model.TransferRecord) error
	ListByEvent(ctx context.Context, organizer model.Identity, eventID int64) ([]*model.TransferRecord, error)
}

type JournalRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewJournalRepository(pool *pgxpool.Pool) JournalRepository {
	return &JournalRepositoryImpl{
		pool: pool,
	}
}

func (r *JournalRepositoryImpl) Insert(ctx context.Context, record *model.TransferRecord) error {
	query := `
		INSERT INTO transfer_journal (
		id, kind, organizer, event_id, ticket_id, from_owner, to_owner, price, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID, record.Kind, record.Organizer, record.EventID, record.TicketID,
		record.FromOwner, record.ToOwner, record.Price, record.Height,
	)
	return err
}

func (r *JournalRepositoryImpl) ListByEvent(ctx context.Context, organizer model.Identity, eventID int64) ([]*model.TransferRecord, error) {
	query := `
		SELECT id, kind, organizer, event_id, ticket_id, from_owner, to_owner,
			price, height, recorded_at
		FROM transfer_journal
		WHERE organizer = $1 AND event_id = $2
		ORDER BY recorded_at
	`

	rows, err := r.pool.Query(ctx, query, organizer, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*model.TransferRecord, 0)
	for rows.Next() {
		var record model.TransferRecord
		err := rows.Scan(
			&record.ID,
			&record.Kind,
			&record.Organizer,
			&record.EventID,
			&record.TicketID,
			&record.FromOwner,
			&record.ToOwner,
			&record.Price,
			&record.Height,
			&record.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
