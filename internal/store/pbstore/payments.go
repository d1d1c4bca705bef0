package pbstore

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"ticketbari/internal/status"
	"ticketbari/models"
)

type paymentRepo struct {
	app core.App
}

func paymentFromRecord(r *core.Record) models.Payment {
	return models.Payment{
		ID:            r.Id,
		BookingID:     r.GetString("bookingId"),
		TicketID:      r.GetString("ticketId"),
		Email:         r.GetString("email"),
		Price:         r.GetFloat("price"),
		TransactionID: r.GetString("transactionId"),
		Date:          r.GetDateTime("date").Time(),
	}
}

func (r *paymentRepo) Insert(ctx context.Context, p *models.Payment) error {
	if _, err := r.FindByBookingID(ctx, p.BookingID); err == nil {
		return status.ErrDuplicate
	}
	if p.TransactionID != "" {
		used, err := r.transactionRecorded(ctx, p.TransactionID)
		if err != nil {
			return err
		}
		if used {
			return status.ErrIntentUsed
		}
	}

	record, err := newRecord(r.app, PaymentsCollection)
	if err != nil {
		return err
	}
	record.Set("bookingId", p.BookingID)
	record.Set("ticketId", p.TicketID)
	record.Set("email", models.NormalizeEmail(p.Email))
	record.Set("price", p.Price)
	record.Set("transactionId", p.TransactionID)
	record.Set("date", p.Date)

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	*p = paymentFromRecord(record)
	return nil
}

func (r *paymentRepo) FindByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	records := []*core.Record{}
	err := r.app.RecordQuery(PaymentsCollection).
		AndWhere(dbx.HashExp{"bookingId": bookingID}).
		Limit(1).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, status.ErrNotFound
	}
	payment := paymentFromRecord(records[0])
	return &payment, nil
}

func (r *paymentRepo) transactionRecorded(ctx context.Context, transactionID string) (bool, error) {
	records := []*core.Record{}
	err := r.app.RecordQuery(PaymentsCollection).
		AndWhere(dbx.HashExp{"transactionId": transactionID}).
		Limit(1).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

func (r *paymentRepo) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	records := []*core.Record{}
	err := r.app.RecordQuery(PaymentsCollection).
		AndWhere(dbx.HashExp{"email": models.NormalizeEmail(email)}).
		OrderBy("date DESC").
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}
	payments := make([]models.Payment, 0, len(records))
	for _, record := range records {
		payments = append(payments, paymentFromRecord(record))
	}
	return payments, nil
}
