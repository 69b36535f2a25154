package model

import (
	"time"

	apperrors "ticket-ledger/pkg/app_errors"
)

// Event is an event record keyed by (organizer, id). Ids are assigned from a
// per-organizer counter and never reused.
type Event struct {
	Organizer     Identity  `json:"organizer" db:"organizer"`
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Venue         string    `json:"venue" db:"venue"`
	EventHeight   Height    `json:"event_height" db:"event_height"`
	BasePrice     int64     `json:"base_price" db:"base_price"`
	Capacity      int       `json:"capacity" db:"capacity"`
	TicketsSold   int       `json:"tickets_sold" db:"tickets_sold"`
	Active        bool      `json:"active" db:"active"`
	ResaleAllowed bool      `json:"resale_allowed" db:"resale_allowed"`
	ResaleCeiling int64     `json:"resale_ceiling" db:"resale_ceiling"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// IsCurrent reports whether the event date has not been reached yet.
func (e *Event) IsCurrent(now Height) bool {
	return e.EventHeight > now
}

// Remaining is the unsold capacity.
func (e *Event) Remaining() int {
	return e.Capacity - e.TicketsSold
}

// MaxResalePrice is the per-listing ceiling: the event's own ceiling bounded
// by the global price limit.
func (e *Event) MaxResalePrice() int64 {
	if e.ResaleCeiling < MaxPrice {
		return e.ResaleCeiling
	}
	return MaxPrice
}

// CreateEventParams carries everything an organizer supplies at creation.
type CreateEventParams struct {
	Name          string
	Description   string
	Venue         string
	EventHeight   Height
	BasePrice     int64
	Capacity      int
	ResaleAllowed bool
	ResaleCeiling int64
}

// UpdateEventParams carries the replaceable fields. Base price, capacity and
// the sold counter are immutable after creation.
type UpdateEventParams struct {
	Name          string
	Description   string
	Venue         string
	EventHeight   Height
	ResaleAllowed bool
	ResaleCeiling int64
}

func validateText(name, description, venue string) error {
	if name == "" || len(name) > MaxNameLen {
		return apperrors.ErrInvalidInput
	}
	if description == "" || len(description) > MaxDescriptionLen {
		return apperrors.ErrInvalidInput
	}
	if venue == "" || len(venue) > MaxVenueLen {
		return apperrors.ErrInvalidInput
	}
	return nil
}

// Validate checks creation input against the registry's invariants. now is
// the current logical height.
func (p CreateEventParams) Validate(now Height) error {
	if err := validateText(p.Name, p.Description, p.Venue); err != nil {
		return err
	}
	if p.BasePrice <= 0 || p.BasePrice > MaxPrice {
		return apperrors.ErrInvalidPrice
	}
	if p.ResaleCeiling < 0 || p.ResaleCeiling > MaxPrice {
		return apperrors.ErrInvalidPrice
	}
	if p.EventHeight <= now {
		return apperrors.ErrInvalidDate
	}
	if p.Capacity <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	return nil
}

// Validate checks update input. The same text and date rules apply as at
// creation.
func (p UpdateEventParams) Validate(now Height) error {
	if err := validateText(p.Name, p.Description, p.Venue); err != nil {
		return err
	}
	if p.ResaleCeiling < 0 || p.ResaleCeiling > MaxPrice {
		return apperrors.ErrInvalidPrice
	}
	if p.EventHeight <= now {
		return apperrors.ErrInvalidDate
	}
	return nil
}
