package model

import "time"

// TransferKind classifies an ownership change for the journal.
type TransferKind string

const (
	TransferKindMint   TransferKind = "mint"
	TransferKindResale TransferKind = "resale"
	TransferKindGift   TransferKind = "gift"
)

// IsValid reports whether the kind is one of the journal kinds.
func (k TransferKind) IsValid() bool {
	switch k {
	case TransferKindMint, TransferKindResale, TransferKindGift:
		return true
	}
	return false
}

// TransferRecord is an audit entry for one committed ownership change. Records
// are published to the transfer queue after commit and persisted by the
// journal worker.
type TransferRecord struct {
	ID         string       `json:"id" db:"id"`
	Kind       TransferKind `json:"kind" db:"kind"`
	Organizer  Identity     `json:"organizer" db:"organizer"`
	EventID    int64        `json:"event_id" db:"event_id"`
	TicketID   int64        `json:"ticket_id" db:"ticket_id"`
	FromOwner  Identity     `json:"from_owner" db:"from_owner"`
	ToOwner    Identity     `json:"to_owner" db:"to_owner"`
	Price      int64        `json:"price" db:"price"`
	Height     Height       `json:"height" db:"height"`
	RecordedAt time.Time    `json:"recorded_at" db:"recorded_at"`
}
