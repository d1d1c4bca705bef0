// Package pbstore keeps the marketplace collections inside the embedded
// PocketBase (SQLite) database.
package pbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"ticketbari/internal/store"
)

const (
	UsersCollection    = "accounts"
	TicketsCollection  = "tickets"
	BookingsCollection = "bookings"
	PaymentsCollection = "payments"
)

type Store struct {
	app core.App
}

var _ store.Store = (*Store)(nil)

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) Users() store.UserRepository       { return &userRepo{app: s.app} }
func (s *Store) Tickets() store.TicketRepository   { return &ticketRepo{app: s.app} }
func (s *Store) Bookings() store.BookingRepository { return &bookingRepo{app: s.app} }
func (s *Store) Payments() store.PaymentRepository { return &paymentRepo{app: s.app} }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(ctx, &tx{Store: Store{app: txApp}})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.app.DB().NewQuery("SELECT 1").WithContext(ctx).Row(&one)
}

// Close is a no-op, the PocketBase app owns the database handles.
func (s *Store) Close(context.Context) error {
	return nil
}

type tx struct {
	Store
}

// Lock is a no-op: PocketBase runs write transactions on its single
// connection nonconcurrent pool, so they never interleave.
func (t *tx) Lock(ctx context.Context, _ string) error {
	return ctx.Err()
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

func newRecord(app core.App, collection string) (*core.Record, error) {
	c, err := app.FindCachedCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}
	return core.NewRecord(c), nil
}

type countRow struct {
	Key   string `db:"key"`
	Total int    `db:"total"`
}

func countBy(ctx context.Context, app core.App, table, column string) ([]countRow, error) {
	var rows []countRow
	err := app.DB().
		Select(fmt.Sprintf("[[%s]] AS [[key]]", column), "COUNT(*) AS [[total]]").
		From(table).
		GroupBy(column).
		WithContext(ctx).
		All(&rows)
	return rows, err
}

// affected reports whether a raw write touched at least one row.
func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
