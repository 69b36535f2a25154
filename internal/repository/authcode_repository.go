package repository

import (
	"context"

	"ticket-ledger/internal/model"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthCode is the stored token for one ticket, written once at mint.
type AuthCode struct {
	Organizer    model.Identity `db:"organizer"`
	EventID      int64          `db:"event_id"`
	TicketID     int64          `db:"ticket_id"`
	Code         string         `db:"code"`
	IssuedHeight model.Height   `db:"issued_height"`
}

type AuthCodeRepository interface {
	Find(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (*AuthCode, error)

	// Transaction methods
	Insert(ctx context.Context, tx pgx.Tx, code *AuthCode) error
	FindForShare(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) (*AuthCode, error)
}

type AuthCodeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewAuthCodeRepository(pool *pgxpool.Pool) AuthCodeRepository {
	return &AuthCodeRepositoryImpl{
		pool: pool,
	}
}

func (r *AuthCodeRepositoryImpl) Insert(ctx context.Context, tx pgx.Tx, code *AuthCode) error {
	query := `
		INSERT INTO auth_codes (organizer, event_id, ticket_id, code, issued_height)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query,
		code.Organizer, code.EventID, code.TicketID, code.Code, code.IssuedHeight,
	)
	return err
}

func scanAuthCode(row pgx.Row) (*AuthCode, error) {
	var code AuthCode
	err := row.Scan(
		&code.Organizer,
		&code.EventID,
		&code.TicketID,
		&code.Code,
		&code.IssuedHeight,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAuthCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *AuthCodeRepositoryImpl) Find(ctx context.Context, organizer model.Identity, eventID, ticketID int64) (*AuthCode, error) {
	query := `
		SELECT organizer, event_id, ticket_id, code, issued_height
		FROM auth_codes
		WHERE organizer = $1 AND event_id = $2 AND ticket_id = $3
	`

	return scanAuthCode(r.pool.QueryRow(ctx, query, organizer, eventID, ticketID))
}

// FindForShare reads the stored code inside a validation transaction. Codes
// are immutable, so a share lock is enough.
func (r *AuthCodeRepositoryImpl) FindForShare(ctx context.Context, tx pgx.Tx, organizer model.Identity, eventID, ticketID int64) (*AuthCode, error) {
	query := `
		SELECT organizer, event_id, ticket_id, code, issued_height
		FROM auth_codes
		WHERE organizer = $1 AND event_id = $2 AND ticket_id = $3
		FOR SHARE
	`

	return scanAuthCode(tx.QueryRow(ctx, query, organizer, eventID, ticketID))
}
