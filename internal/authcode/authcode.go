// Package authcode derives and verifies per-ticket authentication tokens.
//
// Tokens are a one-way hash over (organizer, event id, ticket id, mint
// height). The mint height is observable ledger state, so a party who can
// read the chain at mint time could precompute the token; the derivation is
// tamper-resistant, not secret against the ledger itself.
package authcode

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"

	"ticket-ledger/internal/model"
)

// Len is the length of an encoded token (hex of a sha256 digest).
const Len = 64

// Issue derives the token for a ticket. Deterministic: the same inputs always
// yield the same token.
func Issue(organizer model.Identity, eventID, ticketID int64, seed model.Height) string {
	h := sha256.New()

	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(organizer)))
	h.Write(n[:])
	h.Write([]byte(organizer))

	binary.BigEndian.PutUint64(n[:], uint64(eventID))
	h.Write(n[:])
	binary.BigEndian.PutUint64(n[:], uint64(ticketID))
	h.Write(n[:])
	binary.BigEndian.PutUint64(n[:], uint64(seed))
	h.Write(n[:])

	return hex.EncodeToString(h.Sum(nil))
}

// Verify compares a submitted token against the stored one in constant time.
func Verify(stored, submitted string) bool {
	if len(stored) != Len || len(submitted) != Len {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
