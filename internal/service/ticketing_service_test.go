package service

import (
	"context"
	"testing"
	"time"

	"ticket-ledger/internal/authcode"
	"ticket-ledger/internal/model"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketingService_BuyTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - mints sequential ticket ids", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)
		stack.fund(t, "carol", 1_000)

		first, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)
		second, _, err := stack.ticketing.BuyTicket(ctx, "carol", "alice", event.ID)
		require.NoError(t, err)
		third, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.TicketID)
		assert.Equal(t, int64(2), second.TicketID)
		assert.Equal(t, int64(3), third.TicketID)
		assert.Equal(t, "bob", first.Owner)
		assert.Len(t, code, authcode.Len)
	})

	t.Run("Success - moves the base price to the organizer", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		_, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(900), stack.balance(t, "bob"))
		assert.Equal(t, int64(100), stack.balance(t, "alice"))
	})

	t.Run("Success - records the holding", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		assert.Equal(t, []int64{ticket.TicketID}, stack.ownedTickets(t, "bob", "alice", event.ID))
	})

	t.Run("Failed - sold out", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", func(p *model.CreateEventParams) {
			p.Capacity = 1
		})
		stack.fund(t, "bob", 1_000)
		stack.fund(t, "carol", 1_000)

		_, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		_, _, err = stack.ticketing.BuyTicket(ctx, "carol", "alice", event.ID)
		assert.ErrorIs(t, err, apperrors.ErrSoldOut)

		remaining, err := stack.registry.Availability(ctx, "alice", event.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
	})

	t.Run("Failed - insufficient funds leaves no partial state", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 50) // base price is 100

		_, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

		// the aborted purchase must not have minted, charged, or indexed anything
		got, err := stack.registry.GetEvent(ctx, "alice", event.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.TicketsSold)
		assert.Equal(t, int64(50), stack.balance(t, "bob"))
		assert.Empty(t, stack.ownedTickets(t, "bob", "alice", event.ID))

		_, err = stack.ticketing.GetTicket(ctx, "alice", event.ID, 1)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})

	t.Run("Failed - event date has passed", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		stack.clock.Set(200)

		_, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		assert.ErrorIs(t, err, apperrors.ErrEventExpired)
	})

	t.Run("Failed - per-user cap", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", func(p *model.CreateEventParams) {
			p.Capacity = model.MaxTicketsPerUser + 2
			p.BasePrice = 1
		})
		stack.fund(t, "bob", 1_000)

		for i := 0; i < model.MaxTicketsPerUser; i++ {
			_, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
			require.NoError(t, err)
		}

		_, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		assert.ErrorIs(t, err, apperrors.ErrExceedsMaxPerUser)
	})
}

func TestTicketingService_ValidateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - redeems exactly once", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		require.NoError(t, stack.ticketing.ValidateTicket(ctx, "alice", "alice", event.ID, ticket.TicketID, code))

		got, err := stack.ticketing.GetTicket(ctx, "alice", event.ID, ticket.TicketID)
		require.NoError(t, err)
		assert.True(t, got.Used)

		err = stack.ticketing.ValidateTicket(ctx, "alice", "alice", event.ID, ticket.TicketID, code)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyUsed)
	})

	t.Run("Failed - wrong code", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		tampered := "0" + code[1:]
		if tampered == code {
			tampered = "1" + code[1:]
		}
		err = stack.ticketing.ValidateTicket(ctx, "alice", "alice", event.ID, ticket.TicketID, tampered)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

		got, err := stack.ticketing.GetTicket(ctx, "alice", event.ID, ticket.TicketID)
		require.NoError(t, err)
		assert.False(t, got.Used)
	})

	t.Run("Failed - caller is not the organizer", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		err = stack.ticketing.ValidateTicket(ctx, "bob", "alice", event.ID, ticket.TicketID, code)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Success - VerifyAuthCode never redeems", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		ok, err := stack.ticketing.VerifyAuthCode(ctx, "alice", event.ID, ticket.TicketID, code)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = stack.ticketing.VerifyAuthCode(ctx, "alice", event.ID, ticket.TicketID, "bogus")
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := stack.ticketing.GetTicket(ctx, "alice", event.ID, ticket.TicketID)
		require.NoError(t, err)
		assert.False(t, got.Used)
	})
}

func TestTicketingService_CheckInAttendee(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - check-in and redemption are independent", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		require.NoError(t, stack.ticketing.CheckInAttendee(ctx, "alice", "alice", event.ID, ticket.TicketID))

		err = stack.ticketing.CheckInAttendee(ctx, "alice", "alice", event.ID, ticket.TicketID)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyCheckedIn)

		// redemption still works after check-in
		require.NoError(t, stack.ticketing.ValidateTicket(ctx, "alice", "alice", event.ID, ticket.TicketID, code))
	})

	t.Run("Failed - caller is not the organizer", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		err = stack.ticketing.CheckInAttendee(ctx, "bob", "alice", event.ID, ticket.TicketID)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestTicketingService_TransferTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - moves the holding to the recipient", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", func(p *model.CreateEventParams) {
			p.BasePrice = 1
		})
		stack.fund(t, "bob", 1_000)

		first, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)
		second, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		require.NoError(t, stack.ticketing.TransferTicket(ctx, "bob", "alice", event.ID, first.TicketID, "carol"))

		got, err := stack.ticketing.GetTicket(ctx, "alice", event.ID, first.TicketID)
		require.NoError(t, err)
		assert.Equal(t, "carol", got.Owner)

		// only the moved ticket leaves bob's index
		assert.Equal(t, []int64{second.TicketID}, stack.ownedTickets(t, "bob", "alice", event.ID))
		assert.Equal(t, []int64{first.TicketID}, stack.ownedTickets(t, "carol", "alice", event.ID))
	})

	t.Run("Failed - transfer to self", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		err = stack.ticketing.TransferTicket(ctx, "bob", "alice", event.ID, ticket.TicketID, "bob")
		assert.ErrorIs(t, err, apperrors.ErrSelfTransfer)
	})

	t.Run("Failed - caller does not own the ticket", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		err = stack.ticketing.TransferTicket(ctx, "mallory", "alice", event.ID, ticket.TicketID, "carol")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Success - journal record carries the operation height", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		deliveries, err := stack.transfers.SubscribeTransfers(subCtx)
		require.NoError(t, err)

		stack.clock.Set(150)
		require.NoError(t, stack.ticketing.TransferTicket(ctx, "bob", "alice", event.ID, ticket.TicketID, "carol"))

		// skip the mint record already in the buffer
		for {
			select {
			case d := <-deliveries:
				require.NotNil(t, d.Data)
				d.Ack()
				if d.Data.Kind != model.TransferKindGift {
					continue
				}
				assert.Equal(t, model.Height(150), d.Data.Height)
				assert.Equal(t, "bob", d.Data.FromOwner)
				assert.Equal(t, "carol", d.Data.ToOwner)
				return
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for the journal record")
			}
		}
	})

	t.Run("Failed - ticket already redeemed", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)
		require.NoError(t, stack.ticketing.ValidateTicket(ctx, "alice", "alice", event.ID, ticket.TicketID, code))

		err = stack.ticketing.TransferTicket(ctx, "bob", "alice", event.ID, ticket.TicketID, "carol")
		assert.ErrorIs(t, err, apperrors.ErrAlreadyUsed)
	})
}

func TestTicketingService_IsTicketValid(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - valid until redeemed", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, code, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)

		valid, err := stack.ticketing.IsTicketValid(ctx, "alice", event.ID, ticket.TicketID)
		require.NoError(t, err)
		assert.True(t, valid)

		require.NoError(t, stack.ticketing.ValidateTicket(ctx, "alice", "alice", event.ID, ticket.TicketID, code))

		valid, err = stack.ticketing.IsTicketValid(ctx, "alice", event.ID, ticket.TicketID)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("Success - invalid once the event is cancelled", func(t *testing.T) {
		stack := newTestStack(t)
		event := stack.createEvent(t, "alice", nil)
		stack.fund(t, "bob", 1_000)

		ticket, _, err := stack.ticketing.BuyTicket(ctx, "bob", "alice", event.ID)
		require.NoError(t, err)
		require.NoError(t, stack.registry.CancelEvent(ctx, "alice", "alice", event.ID))

		valid, err := stack.ticketing.IsTicketValid(ctx, "alice", event.ID, ticket.TicketID)
		require.NoError(t, err)
		assert.False(t, valid)
	})
}
