// Package memstore is an in-process store backend. Transactions are
// serialized and roll back by restoring a snapshot.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ticketbari/internal/store"
	"ticketbari/models"
)

type data struct {
	users    map[string]models.User
	tickets  map[string]models.Ticket
	bookings map[string]models.Booking
	payments map[string]models.Payment
}

func (d *data) clone() *data {
	c := &data{
		users:    make(map[string]models.User, len(d.users)),
		tickets:  make(map[string]models.Ticket, len(d.tickets)),
		bookings: make(map[string]models.Booking, len(d.bookings)),
		payments: make(map[string]models.Payment, len(d.payments)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.tickets {
		v.Perks = append([]string(nil), v.Perks...)
		c.tickets[k] = v
	}
	for k, v := range d.bookings {
		v.SeatNumbers = append(models.SeatNumbers(nil), v.SeatNumbers...)
		c.bookings[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	return c
}

type Store struct {
	// txMu serializes writers, mu guards the maps.
	txMu sync.Mutex
	mu   sync.RWMutex
	data *data

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		data: &data{
			users:    map[string]models.User{},
			tickets:  map[string]models.Ticket{},
			bookings: map[string]models.Booking{},
			payments: map[string]models.Payment{},
		},
		now: time.Now,
	}
}

// SetClock overrides the time source used for created timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Users() store.UserRepository       { return &userRepo{s: s} }
func (s *Store) Tickets() store.TicketRepository   { return &ticketRepo{s: s} }
func (s *Store) Bookings() store.BookingRepository { return &bookingRepo{s: s} }
func (s *Store) Payments() store.PaymentRepository { return &paymentRepo{s: s} }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &tx{s: s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(context.Context) error {
	return nil
}

// write runs fn under the data lock, also taking the writer lock when the
// caller is not already inside a transaction.
func (s *Store) write(inTx bool, fn func(d *data) error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(fn func(d *data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

type tx struct {
	s *Store
}

func (t *tx) Users() store.UserRepository       { return &userRepo{s: t.s, inTx: true} }
func (t *tx) Tickets() store.TicketRepository   { return &ticketRepo{s: t.s, inTx: true} }
func (t *tx) Bookings() store.BookingRepository { return &bookingRepo{s: t.s, inTx: true} }
func (t *tx) Payments() store.PaymentRepository { return &paymentRepo{s: t.s, inTx: true} }

// Lock is a no-op: transactions already run one at a time.
func (t *tx) Lock(ctx context.Context, _ string) error {
	return ctx.Err()
}

func newID() string {
	return uuid.NewString()
}
