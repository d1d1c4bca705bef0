// Package store defines the persistence contracts of the booking service.
// Backends live in the memstore, pbstore and mongostore subpackages.
package store

import (
	"context"

	"ticketbari/models"
)

type TicketSort string

const (
	SortNewest    TicketSort = ""
	SortPriceAsc  TicketSort = "price_asc"
	SortPriceDesc TicketSort = "price_desc"
	SortDeparture TicketSort = "departure"
)

type TicketFilter struct {
	VendorEmail    string
	From           string
	To             string
	TransportType  string
	Search         string
	Status         models.VerificationStatus
	AdvertisedOnly bool
	Sort           TicketSort
	Limit          int
	Offset         int
}

type BookingFilter struct {
	TicketID      string
	CustomerEmail string
	VendorEmail   string
	// HoldingOnly keeps bookings whose status occupies seats.
	HoldingOnly bool
}

type UserRepository interface {
	// Insert fails with status.ErrDuplicate when the email is taken.
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// SetRole reports whether the stored role changed.
	SetRole(ctx context.Context, id string, role models.Role) (bool, error)
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}

type TicketRepository interface {
	Insert(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id string) (*models.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]models.Ticket, error)
	Update(ctx context.Context, id string, patch models.TicketPatch) (*models.Ticket, error)
	Delete(ctx context.Context, id string) error
	SetVerificationStatus(ctx context.Context, id string, status models.VerificationStatus) error
	SetAdvertised(ctx context.Context, id string, advertised bool) error
	CountAdvertised(ctx context.Context) (int, error)
	// DecrementQuantity subtracts qty only when the remaining quantity covers it,
	// otherwise it returns *status.InsufficientQuantityError.
	DecrementQuantity(ctx context.Context, id string, qty int) error
	// RejectByVendor rejects and unadvertises every ticket of the vendor and
	// returns how many tickets changed.
	RejectByVendor(ctx context.Context, vendorEmail string) (int, error)
	CountByStatus(ctx context.Context) (map[models.VerificationStatus]int, error)
}

type BookingRepository interface {
	Insert(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	// TransitionStatus moves the booking to `to` only if it is currently in
	// `from` and reports whether it did.
	TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error)
	// DeleteIfStatus removes the booking only while it is in the given status.
	DeleteIfStatus(ctx context.Context, id string, status models.BookingStatus) (bool, error)
}

type PaymentRepository interface {
	// Insert fails with status.ErrDuplicate for a second payment of a booking
	// and with status.ErrIntentUsed when a non-empty transaction id is
	// already recorded.
	Insert(ctx context.Context, payment *models.Payment) error
	FindByBookingID(ctx context.Context, bookingID string) (*models.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]models.Payment, error)
}

type Repositories interface {
	Users() UserRepository
	Tickets() TicketRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
}

// Tx is a unit of work. Everything written through it commits or rolls back
// together.
type Tx interface {
	Repositories
	// Lock serializes the transaction against every other transaction that
	// locks the same key.
	Lock(ctx context.Context, key string) error
}

type Store interface {
	Repositories
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func TicketLockKey(ticketID string) string {
	return "ticket:" + ticketID
}

func BookingLockKey(bookingID string) string {
	return "booking:" + bookingID
}

const AdvertiseLockKey = "advertise"
