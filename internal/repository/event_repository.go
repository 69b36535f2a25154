package repository

import (
	"context"
	"time"

	"ticket-ledger/internal/model"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Find(ctx context.Context, organizer model.Identity, id int64) (*model.Event, error)
	ListByOrganizer(ctx context.Context, organizer model.Identity) ([]*model.Event, error)

	// Transaction methods
	NextEventID(ctx context.Context, tx pgx.Tx, organizer model.Identity) (int64, error)
	Create(ctx context.Context, tx pgx.Tx, event *model.Event) (*model.Event, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64) (*model.Event, error)
	UpdateInfo(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64, params model.UpdateEventParams) (*model.Event, error)
	IncrementSold(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64) (int, error)
	Deactivate(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `organizer, id, name, description, venue, event_height,
	base_price, capacity, tickets_sold, active, resale_allowed, resale_ceiling,
	created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.Organizer,
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.EventHeight,
		&event.BasePrice,
		&event.Capacity,
		&event.TicketsSold,
		&event.Active,
		&event.ResaleAllowed,
		&event.ResaleCeiling,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// NextEventID allocates the next id for the organizer. The counter is
// monotonic and never decremented; the first allocation yields 1.
func (r *EventRepositoryImpl) NextEventID(ctx context.Context, tx pgx.Tx, organizer model.Identity) (int64, error) {
	query := `
		INSERT INTO organizer_counters (organizer, next_event_id)
		VALUES ($1, 2)
		ON CONFLICT (organizer) DO UPDATE SET next_event_id = organizer_counters.next_event_id + 1
		RETURNING next_event_id - 1
	`

	var id int64
	err := tx.QueryRow(ctx, query, organizer).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (
		organizer, id, name, description, venue, event_height,
		base_price, capacity, tickets_sold, active, resale_allowed, resale_ceiling)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, TRUE, $9, $10)
		RETURNING ` + eventColumns

	row := tx.QueryRow(ctx, query,
		event.Organizer, event.ID, event.Name, event.Description, event.Venue,
		event.EventHeight, event.BasePrice, event.Capacity,
		event.ResaleAllowed, event.ResaleCeiling,
	)

	return scanEvent(row)
}

func (r *EventRepositoryImpl) Find(ctx context.Context, organizer model.Identity, id int64) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer = $1 AND id = $2
	`

	return scanEvent(r.pool.QueryRow(ctx, query, organizer, id))
}

// FindForUpdate locks the event row for the rest of the transaction. Every
// mutating operation takes this lock first, so operations touching the same
// event are totally ordered.
func (r *EventRepositoryImpl) FindForUpdate(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer = $1 AND id = $2
		FOR UPDATE
	`

	return scanEvent(tx.QueryRow(ctx, query, organizer, id))
}

func (r *EventRepositoryImpl) ListByOrganizer(ctx context.Context, organizer model.Identity) ([]*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, organizer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// UpdateInfo replaces the mutable fields. Base price, capacity and the sold
// counter are immutable post-creation and are not touched.
func (r *EventRepositoryImpl) UpdateInfo(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64, params model.UpdateEventParams) (*model.Event, error) {
	query := `
		UPDATE events
		SET name = $1, description = $2, venue = $3, event_height = $4,
			resale_allowed = $5, resale_ceiling = $6, updated_at = $7
		WHERE organizer = $8 AND id = $9
		RETURNING ` + eventColumns

	row := tx.QueryRow(ctx, query,
		params.Name, params.Description, params.Venue, params.EventHeight,
		params.ResaleAllowed, params.ResaleCeiling, time.Now().UTC(),
		organizer, id,
	)

	return scanEvent(row)
}

// IncrementSold bumps the sold counter under the capacity guard and returns
// the new value, which is also the ticket id minted by this sale.
func (r *EventRepositoryImpl) IncrementSold(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64) (int, error) {
	query := `
		UPDATE events
		SET tickets_sold = tickets_sold + 1, updated_at = $1
		WHERE organizer = $2 AND id = $3 AND tickets_sold < capacity
		RETURNING tickets_sold
	`

	var sold int
	err := tx.QueryRow(ctx, query, time.Now().UTC(), organizer, id).Scan(&sold)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrSoldOut
		}
		return 0, err
	}

	return sold, nil
}

// Deactivate soft-deletes the event. Sold tickets are untouched.
func (r *EventRepositoryImpl) Deactivate(ctx context.Context, tx pgx.Tx, organizer model.Identity, id int64) error {
	query := `
		UPDATE events
		SET active = FALSE, updated_at = $1
		WHERE organizer = $2 AND id = $3
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), organizer, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}
