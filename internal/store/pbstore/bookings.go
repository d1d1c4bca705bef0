package pbstore

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type bookingRepo struct {
	app core.App
}

func bookingFromRecord(r *core.Record) models.Booking {
	seats := models.SeatNumbers{}
	_ = r.UnmarshalJSONField("seatNumbers", &seats)

	return models.Booking{
		ID:            r.Id,
		TicketID:      r.GetString("ticketId"),
		TicketTitle:   r.GetString("ticketTitle"),
		CustomerEmail: r.GetString("customerEmail"),
		CustomerName:  r.GetString("customerName"),
		VendorEmail:   r.GetString("vendorEmail"),
		SeatNumbers:   seats,
		BookingQty:    r.GetInt("bookingQty"),
		UnitPrice:     r.GetFloat("unitPrice"),
		TotalPrice:    r.GetFloat("totalPrice"),
		DepartureDate: r.GetString("departureDate"),
		Status:        models.BookingStatus(r.GetString("status")),
		CreatedAt:     r.GetDateTime("created").Time(),
	}
}

func (r *bookingRepo) Insert(ctx context.Context, b *models.Booking) error {
	record, err := newRecord(r.app, BookingsCollection)
	if err != nil {
		return err
	}
	record.Set("ticketId", b.TicketID)
	record.Set("ticketTitle", b.TicketTitle)
	record.Set("customerEmail", models.NormalizeEmail(b.CustomerEmail))
	record.Set("customerName", b.CustomerName)
	record.Set("vendorEmail", models.NormalizeEmail(b.VendorEmail))
	record.Set("seatNumbers", []string(b.SeatNumbers))
	record.Set("bookingQty", b.BookingQty)
	record.Set("unitPrice", b.UnitPrice)
	record.Set("totalPrice", b.TotalPrice)
	record.Set("departureDate", b.DepartureDate)
	record.Set("status", string(b.Status))

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	*b = bookingFromRecord(record)
	return nil
}

func (r *bookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	record, err := r.app.FindRecordById(BookingsCollection, id)
	if err != nil {
		return nil, notFound(err, status.ErrBookingNotFound)
	}
	booking := bookingFromRecord(record)
	return &booking, nil
}

func (r *bookingRepo) List(ctx context.Context, f store.BookingFilter) ([]models.Booking, error) {
	q := r.app.RecordQuery(BookingsCollection)
	if f.TicketID != "" {
		q.AndWhere(dbx.HashExp{"ticketId": f.TicketID})
	}
	if f.CustomerEmail != "" {
		q.AndWhere(dbx.HashExp{"customerEmail": models.NormalizeEmail(f.CustomerEmail)})
	}
	if f.VendorEmail != "" {
		q.AndWhere(dbx.HashExp{"vendorEmail": models.NormalizeEmail(f.VendorEmail)})
	}
	if f.HoldingOnly {
		q.AndWhere(dbx.In("status",
			string(models.BookingPending), string(models.BookingApproved), string(models.BookingPaid)))
	}

	records := []*core.Record{}
	if err := q.OrderBy("created DESC").WithContext(ctx).All(&records); err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, bookingFromRecord(record))
	}
	return bookings, nil
}

func (r *bookingRepo) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	moved, err := affected(r.app.DB().Update(BookingsCollection,
		dbx.Params{"status": string(to), "updated": types.NowDateTime().String()},
		dbx.HashExp{"id": id, "status": string(from)},
	).WithContext(ctx).Execute())
	if err != nil || moved {
		return moved, err
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *bookingRepo) DeleteIfStatus(ctx context.Context, id string, st models.BookingStatus) (bool, error) {
	deleted, err := affected(r.app.DB().Delete(BookingsCollection,
		dbx.HashExp{"id": id, "status": string(st)},
	).WithContext(ctx).Execute())
	if err != nil || deleted {
		return deleted, err
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
