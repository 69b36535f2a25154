package model

// Identity is an account identifier on the ledger (organizer, owner or buyer).
type Identity = string

// Height is a logical, block-granular timestamp. Event dates and auth-code
// seeds are heights, never wall time.
type Height uint64

const (
	// MaxPrice is the global price ceiling for base prices, resale prices
	// and resale ceilings, in base currency units.
	MaxPrice int64 = 1_000_000_000

	MaxNameLen        = 64
	MaxDescriptionLen = 256
	MaxVenueLen       = 128

	// MaxTicketsPerUser caps how many tickets one identity may hold for a
	// single event.
	MaxTicketsPerUser = 10
)
