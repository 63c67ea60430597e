package model

import "time"

// Ticket is an unguessable token redeemable for one stored archive. It
// carries at least 128 bits of entropy and never maps to more than one
// archive over its lifetime.
type Ticket string

// TicketRecord is the stored-archive bookkeeping behind a ticket.
type TicketRecord struct {
	// Path of the temporary archive file on disk
	Path string
	// ExpiresAt is the absolute instant after which the ticket is invalid,
	// even if a sweep has not physically removed the record yet
	ExpiresAt time.Time
	// Timestamp is the display timestamp embedded in the served filename
	Timestamp string
}

// Expired reports whether the record is past its expiry at the given instant
func (r *TicketRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
