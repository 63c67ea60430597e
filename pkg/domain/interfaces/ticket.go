package interfaces

import (
	"context"

	"github.com/hy-sato/picket/pkg/domain/model"
)

// TicketStore persists archive blobs to temporary storage and manages their
// ticket lifecycle. All methods are safe for concurrent use.
type TicketStore interface {
	// Issue persists the blob and returns a fresh ticket valid for the
	// store's TTL
	Issue(blob []byte, timestamp string) (model.Ticket, error)

	// Peek looks a ticket up without consuming it. Expired records are
	// reported as absent.
	Peek(ticket model.Ticket) (*model.TicketRecord, bool)

	// Pop looks a ticket up and removes the record atomically; same expiry
	// semantics as Peek
	Pop(ticket model.Ticket) (*model.TicketRecord, bool)

	// Sweep removes all expired records and their backing files, returning
	// the number of records removed. A missing backing file is not an error.
	Sweep(ctx context.Context) int

	// Len returns the number of live records
	Len() int
}

// Notifier delivers best-effort operational notifications. Delivery failures
// are swallowed and logged; Notify never blocks on the outbound call.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}
