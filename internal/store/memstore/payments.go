package memstore

import (
	"context"
	"sort"

	"ticketbari/internal/status"
	"ticketbari/models"
)

type paymentRepo struct {
	s    *Store
	inTx bool
}

func (r *paymentRepo) Insert(_ context.Context, payment *models.Payment) error {
	return r.s.write(r.inTx, func(d *data) error {
		for _, p := range d.payments {
			if p.BookingID == payment.BookingID {
				return status.ErrDuplicate
			}
			if payment.TransactionID != "" && p.TransactionID == payment.TransactionID {
				return status.ErrIntentUsed
			}
		}
		if payment.ID == "" {
			payment.ID = newID()
		}
		if payment.Date.IsZero() {
			payment.Date = r.s.now()
		}
		payment.Email = models.NormalizeEmail(payment.Email)
		d.payments[payment.ID] = *payment
		return nil
	})
}

func (r *paymentRepo) FindByBookingID(_ context.Context, bookingID string) (*models.Payment, error) {
	var payment *models.Payment
	err := r.s.read(func(d *data) error {
		for _, p := range d.payments {
			if p.BookingID == bookingID {
				p := p
				payment = &p
				return nil
			}
		}
		return status.ErrNotFound
	})
	return payment, err
}

func (r *paymentRepo) ListByEmail(_ context.Context, email string) ([]models.Payment, error) {
	payments := []models.Payment{}
	_ = r.s.read(func(d *data) error {
		for _, p := range d.payments {
			if models.SameEmail(p.Email, email) {
				payments = append(payments, p)
			}
		}
		return nil
	})
	sort.Slice(payments, func(i, j int) bool { return payments[i].Date.After(payments[j].Date) })
	return payments, nil
}
