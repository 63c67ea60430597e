package ticket

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ticketBytes is the raw entropy per ticket: 16 bytes = 128 bits, enough to
// make guessing infeasible within the 15 minute lifetime
const ticketBytes = 16

// Store maps tickets to archive files on temporary storage. It is
// process-local: records do not survive a restart, and leftover files from a
// previous run are orphaned (temp storage reclaims them).
type Store struct {
	mu      sync.Mutex
	records map[model.Ticket]*model.TicketRecord
	ttl     time.Duration
	dir     string
	now     func() time.Time
}

// Option is a functional option for Store configuration
type Option func(*Store)

// WithDir places archive files under dir instead of the OS temp directory
func WithDir(dir string) Option {
	return func(s *Store) {
		s.dir = dir
	}
}

// WithNow replaces the clock (used by tests)
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store whose tickets expire ttl after issuance
func New(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		records: make(map[model.Ticket]*model.TicketRecord),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue persists blob to a uniquely named temporary file and returns a fresh
// ticket for it. Ownership of the file stays with the store until the ticket
// is popped or swept.
func (s *Store) Issue(blob []byte, timestamp string) (model.Ticket, error) {
	ticket, err := newTicket()
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.dir, "picket_*.zip")
	if err != nil {
		return "", goerr.Wrap(err, "failed to create archive file")
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", goerr.Wrap(err, "failed to write archive file", goerr.V("path", f.Name()))
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", goerr.Wrap(err, "failed to close archive file", goerr.V("path", f.Name()))
	}

	rec := &model.TicketRecord{
		Path:      f.Name(),
		ExpiresAt: s.now().Add(s.ttl),
		Timestamp: timestamp,
	}

	s.mu.Lock()
	s.records[ticket] = rec
	s.mu.Unlock()

	return ticket, nil
}

// Peek looks a ticket up without consuming it. An expired record reads as
// absent; its record and file are reclaimed on the spot rather than waiting
// for the next sweep.
func (s *Store) Peek(ticket model.Ticket) (*model.TicketRecord, bool) {
	s.mu.Lock()
	rec, ok := s.records[ticket]
	if ok && rec.Expired(s.now()) {
		delete(s.records, ticket)
		s.mu.Unlock()
		removeFile(rec.Path)
		return nil, false
	}
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	return rec, true
}

// Pop looks a ticket up and removes its record atomically. The caller takes
// ownership of the backing file. Expired records read as absent and are
// reclaimed, same as Peek.
func (s *Store) Pop(ticket model.Ticket) (*model.TicketRecord, bool) {
	s.mu.Lock()
	rec, ok := s.records[ticket]
	if ok {
		delete(s.records, ticket)
	}
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	if rec.Expired(s.now()) {
		removeFile(rec.Path)
		return nil, false
	}
	return rec, true
}

// Sweep removes every expired record and deletes its backing file, returning
// the number of records removed. A missing file is a no-op; a deletion
// failure is logged and the sweep continues.
func (s *Store) Sweep(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	var expired []*model.TicketRecord
	for ticket, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, ticket)
			expired = append(expired, rec)
		}
	}
	remaining := len(s.records)
	s.mu.Unlock()

	logger := ctxlog.From(ctx)
	for _, rec := range expired {
		if err := os.Remove(rec.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to delete expired archive",
				"path", rec.Path,
				"error", err,
			)
			continue
		}
		logger.Info("deleted expired archive", "path", rec.Path)
	}

	if len(expired) > 0 {
		logger.Info("ticket sweep finished",
			"removed", len(expired),
			"remaining", remaining,
		)
	}
	return len(expired)
}

// Len returns the number of live records
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func newTicket() (model.Ticket, error) {
	buf := make([]byte, ticketBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerr.Wrap(err, "failed to generate ticket")
	}
	return model.Ticket(base64.RawURLEncoding.EncodeToString(buf)), nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		ctxlog.From(context.Background()).Warn("failed to delete archive file",
			"path", path,
			"error", err,
		)
	}
}
