package app_errors

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEventNotFound     = errors.New("event not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrAuthCodeNotFound  = errors.New("auth code not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrEventExpired      = errors.New("event expired")
	ErrInsufficientFunds = errors.New("insufficient payment")
	ErrSoldOut           = errors.New("sold out")
	ErrAlreadyUsed       = errors.New("ticket already used")
	ErrAlreadyCheckedIn  = errors.New("ticket already checked in")
	ErrNotForSale        = errors.New("ticket not for sale")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrExceedsMaxPerUser = errors.New("exceeds max tickets per user")

	ErrInternalServerError = errors.New("internal server error")
)
