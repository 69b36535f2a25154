package model

import (
	"time"

	apperrors "ticket-ledger/pkg/app_errors"
)

// TicketStatus is the sale axis of the ticket state machine. The used and
// checked-in flags are orthogonal one-way axes tracked separately.
type TicketStatus string

const (
	// TicketStatusMinted is an owned ticket that is not listed for sale.
	TicketStatusMinted TicketStatus = "minted"
	// TicketStatusListed is an owned ticket offered on the resale market.
	TicketStatusListed TicketStatus = "listed"
)

// Ticket is keyed by (organizer, event id, ticket id). Ticket ids are assigned
// sequentially at mint time, unique within an event, never reused.
type Ticket struct {
	Organizer   Identity  `json:"organizer" db:"organizer"`
	EventID     int64     `json:"event_id" db:"event_id"`
	TicketID    int64     `json:"ticket_id" db:"ticket_id"`
	Owner       Identity  `json:"owner" db:"owner"`
	ResalePrice int64     `json:"resale_price" db:"resale_price"`
	ForSale     bool      `json:"for_sale" db:"for_sale"`
	Used        bool      `json:"used" db:"used"`
	CheckedIn   bool      `json:"checked_in" db:"checked_in"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Status derives the sale-axis state from the for-sale flag.
func (t *Ticket) Status() TicketStatus {
	if t.ForSale {
		return TicketStatusListed
	}
	return TicketStatusMinted
}

// terminalState reports whether the ticket has been redeemed or checked in.
// Both flags are monotonic: once set, no operation clears them.
func (t *Ticket) terminalState() error {
	if t.Used {
		return apperrors.ErrAlreadyUsed
	}
	if t.CheckedIn {
		return apperrors.ErrAlreadyCheckedIn
	}
	return nil
}

// CanList guards Minted -> Listed.
func (t *Ticket) CanList(caller Identity, event *Event, now Height, price int64) error {
	if t.Owner != caller {
		return apperrors.ErrUnauthorized
	}
	if !event.ResaleAllowed {
		return apperrors.ErrNotForSale
	}
	if !event.Active || !event.IsCurrent(now) {
		return apperrors.ErrEventExpired
	}
	if err := t.terminalState(); err != nil {
		return err
	}
	if price < 0 || price > event.MaxResalePrice() {
		return apperrors.ErrInvalidPrice
	}
	return nil
}

// CanDelist guards Listed -> Minted for the owner.
func (t *Ticket) CanDelist(caller Identity) error {
	if t.Owner != caller {
		return apperrors.ErrUnauthorized
	}
	if !t.ForSale {
		return apperrors.ErrNotForSale
	}
	return nil
}

// CanTransfer guards the gift transfer: owner-initiated, no payment.
func (t *Ticket) CanTransfer(caller, recipient Identity) error {
	if t.Owner != caller {
		return apperrors.ErrUnauthorized
	}
	if recipient == caller {
		return apperrors.ErrSelfTransfer
	}
	return t.terminalState()
}

// CanResell guards Listed -> Minted(new owner), the resale purchase.
func (t *Ticket) CanResell(buyer Identity, event *Event, now Height) error {
	if !t.ForSale {
		return apperrors.ErrNotForSale
	}
	if !event.Active {
		return apperrors.ErrEventNotFound
	}
	if !event.IsCurrent(now) {
		return apperrors.ErrEventExpired
	}
	if buyer == t.Owner {
		return apperrors.ErrSelfTransfer
	}
	return t.terminalState()
}

// CanRedeem guards Minted -> Redeemed. Organizer authorization and auth-code
// comparison happen at the call site; this checks only the state axis.
func (t *Ticket) CanRedeem() error {
	if t.Used {
		return apperrors.ErrAlreadyUsed
	}
	return nil
}

// CanCheckIn guards the attendance axis, independent of used and for-sale.
func (t *Ticket) CanCheckIn() error {
	if t.CheckedIn {
		return apperrors.ErrAlreadyCheckedIn
	}
	return nil
}

// IsValid reports whether the ticket can still be redeemed for entry.
func (t *Ticket) IsValid(event *Event) bool {
	return !t.Used && event.Active
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	Organizer   Identity `json:"organizer"`
	EventID     int64    `json:"event_id"`
	TicketID    int64    `json:"ticket_id"`
	Owner       Identity `json:"owner"`
	Status      string   `json:"status"`
	ResalePrice int64    `json:"resale_price"`
	Used        bool     `json:"used"`
	CheckedIn   bool     `json:"checked_in"`
}

func (t *Ticket) Response() TicketResponse {
	return TicketResponse{
		Organizer:   t.Organizer,
		EventID:     t.EventID,
		TicketID:    t.TicketID,
		Owner:       t.Owner,
		Status:      string(t.Status()),
		ResalePrice: t.ResalePrice,
		Used:        t.Used,
		CheckedIn:   t.CheckedIn,
	}
}
