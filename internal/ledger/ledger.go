package ledger

import (
	"context"

	"ticket-ledger/internal/model"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentLedger moves value between accounts. Transfer runs on the caller's
// transaction, so payment commits or aborts together with whatever state
// change surrounds it.
type PaymentLedger interface {
	Transfer(ctx context.Context, tx pgx.Tx, amount int64, from, to model.Identity) error
	Deposit(ctx context.Context, amount int64, owner model.Identity) error
	BalanceOf(ctx context.Context, owner model.Identity) (int64, error)
}

type AccountLedgerImpl struct {
	pool *pgxpool.Pool
}

func NewAccountLedger(pool *pgxpool.Pool) PaymentLedger {
	return &AccountLedgerImpl{
		pool: pool,
	}
}

// Transfer debits from and credits to. A zero amount or a transfer to self
// moves nothing and succeeds. The debit is guarded by the balance, so an
// underfunded payer aborts the enclosing transaction.
func (l *AccountLedgerImpl) Transfer(ctx context.Context, tx pgx.Tx, amount int64, from, to model.Identity) error {
	if amount < 0 {
		return apperrors.ErrInvalidPrice
	}
	if amount == 0 || from == to {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1
		WHERE owner = $2 AND balance >= $1
	`

	result, err := tx.Exec(ctx, query, amount, from)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientFunds
	}

	query = `
		INSERT INTO accounts (owner, balance)
		VALUES ($1, $2)
		ON CONFLICT (owner) DO UPDATE SET balance = accounts.balance + $2
	`

	_, err = tx.Exec(ctx, query, to, amount)
	return err
}

func (l *AccountLedgerImpl) Deposit(ctx context.Context, amount int64, owner model.Identity) error {
	if amount <= 0 {
		return apperrors.ErrInvalidPrice
	}

	query := `
		INSERT INTO accounts (owner, balance)
		VALUES ($1, $2)
		ON CONFLICT (owner) DO UPDATE SET balance = accounts.balance + $2
	`

	_, err := l.pool.Exec(ctx, query, owner, amount)
	return err
}

func (l *AccountLedgerImpl) BalanceOf(ctx context.Context, owner model.Identity) (int64, error) {
	query := `
		SELECT balance FROM accounts WHERE owner = $1
	`

	var balance int64
	err := l.pool.QueryRow(ctx, query, owner).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrAccountNotFound
		}
		return 0, err
	}

	return balance, nil
}
