package memstore

import (
	"context"
	"sort"

	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type bookingRepo struct {
	s    *Store
	inTx bool
}

func (r *bookingRepo) Insert(_ context.Context, booking *models.Booking) error {
	return r.s.write(r.inTx, func(d *data) error {
		if booking.ID == "" {
			booking.ID = newID()
		}
		if booking.CreatedAt.IsZero() {
			booking.CreatedAt = r.s.now()
		}
		booking.CustomerEmail = models.NormalizeEmail(booking.CustomerEmail)
		booking.VendorEmail = models.NormalizeEmail(booking.VendorEmail)
		stored := *booking
		stored.SeatNumbers = append(models.SeatNumbers(nil), booking.SeatNumbers...)
		d.bookings[booking.ID] = stored
		return nil
	})
}

func (r *bookingRepo) FindByID(_ context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.s.read(func(d *data) error {
		b, ok := d.bookings[id]
		if !ok {
			return status.ErrBookingNotFound
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) List(_ context.Context, filter store.BookingFilter) ([]models.Booking, error) {
	bookings := []models.Booking{}
	_ = r.s.read(func(d *data) error {
		for _, b := range d.bookings {
			if filter.Matches(&b) {
				bookings = append(bookings, b)
			}
		}
		return nil
	})
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return bookings, nil
}

func (r *bookingRepo) TransitionStatus(_ context.Context, id string, from, to models.BookingStatus) (bool, error) {
	moved := false
	err := r.s.write(r.inTx, func(d *data) error {
		b, ok := d.bookings[id]
		if !ok {
			return status.ErrBookingNotFound
		}
		if b.Status != from {
			return nil
		}
		b.Status = to
		d.bookings[id] = b
		moved = true
		return nil
	})
	return moved, err
}

func (r *bookingRepo) DeleteIfStatus(_ context.Context, id string, st models.BookingStatus) (bool, error) {
	deleted := false
	err := r.s.write(r.inTx, func(d *data) error {
		b, ok := d.bookings[id]
		if !ok {
			return status.ErrBookingNotFound
		}
		if b.Status != st {
			return nil
		}
		delete(d.bookings, id)
		deleted = true
		return nil
	})
	return deleted, err
}
