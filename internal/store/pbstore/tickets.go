package pbstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type ticketRepo struct {
	app core.App
}

func ticketFromRecord(r *core.Record) models.Ticket {
	perks := []string{}
	_ = r.UnmarshalJSONField("perks", &perks)

	return models.Ticket{
		ID:                 r.Id,
		VendorEmail:        r.GetString("vendorEmail"),
		VendorName:         r.GetString("vendorName"),
		Title:              r.GetString("title"),
		From:               r.GetString("origin"),
		To:                 r.GetString("destination"),
		TransportType:      r.GetString("transportType"),
		Price:              r.GetFloat("price"),
		Quantity:           r.GetInt("quantity"),
		DepartureDate:      r.GetString("departureDate"),
		Perks:              perks,
		Photo:              r.GetString("photo"),
		VerificationStatus: models.VerificationStatus(r.GetString("verificationStatus")),
		IsAdvertised:       r.GetBool("isAdvertised"),
		CreatedAt:          r.GetDateTime("created").Time(),
	}
}

func fillTicketRecord(r *core.Record, t *models.Ticket) {
	perks := t.Perks
	if perks == nil {
		perks = []string{}
	}
	r.Set("vendorEmail", models.NormalizeEmail(t.VendorEmail))
	r.Set("vendorName", t.VendorName)
	r.Set("title", t.Title)
	r.Set("origin", t.From)
	r.Set("destination", t.To)
	r.Set("transportType", t.TransportType)
	r.Set("price", t.Price)
	r.Set("quantity", t.Quantity)
	r.Set("departureDate", t.DepartureDate)
	r.Set("perks", perks)
	r.Set("photo", t.Photo)
	r.Set("verificationStatus", string(t.VerificationStatus))
	r.Set("isAdvertised", t.IsAdvertised)
}

func (r *ticketRepo) Insert(ctx context.Context, ticket *models.Ticket) error {
	record, err := newRecord(r.app, TicketsCollection)
	if err != nil {
		return err
	}
	fillTicketRecord(record, ticket)
	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("save ticket: %w", err)
	}
	*ticket = ticketFromRecord(record)
	return nil
}

func (r *ticketRepo) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	record, err := r.app.FindRecordById(TicketsCollection, id)
	if err != nil {
		return nil, notFound(err, status.ErrTicketNotFound)
	}
	ticket := ticketFromRecord(record)
	return &ticket, nil
}

func (r *ticketRepo) List(ctx context.Context, f store.TicketFilter) ([]models.Ticket, error) {
	q := r.app.RecordQuery(TicketsCollection)

	if f.VendorEmail != "" {
		q.AndWhere(dbx.HashExp{"vendorEmail": models.NormalizeEmail(f.VendorEmail)})
	}
	if f.From != "" {
		q.AndWhere(dbx.NewExp("LOWER([[origin]]) = {:origin}", dbx.Params{"origin": strings.ToLower(f.From)}))
	}
	if f.To != "" {
		q.AndWhere(dbx.NewExp("LOWER([[destination]]) = {:destination}", dbx.Params{"destination": strings.ToLower(f.To)}))
	}
	if f.TransportType != "" {
		q.AndWhere(dbx.NewExp("LOWER([[transportType]]) = {:transport}", dbx.Params{"transport": strings.ToLower(f.TransportType)}))
	}
	if f.Status != "" {
		q.AndWhere(dbx.HashExp{"verificationStatus": string(f.Status)})
	}
	if f.AdvertisedOnly {
		q.AndWhere(dbx.HashExp{"isAdvertised": true})
	}
	if f.Search != "" {
		q.AndWhere(dbx.Like("title", f.Search))
	}

	switch f.Sort {
	case store.SortPriceAsc:
		q.OrderBy("price ASC")
	case store.SortPriceDesc:
		q.OrderBy("price DESC")
	case store.SortDeparture:
		q.OrderBy("departureDate ASC")
	default:
		q.OrderBy("created DESC")
	}
	if f.Limit > 0 {
		q.Limit(int64(f.Limit))
	}
	if f.Offset > 0 {
		q.Offset(int64(f.Offset))
	}

	records := []*core.Record{}
	if err := q.WithContext(ctx).All(&records); err != nil {
		return nil, err
	}
	tickets := make([]models.Ticket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, ticketFromRecord(record))
	}
	return tickets, nil
}

func (r *ticketRepo) Update(ctx context.Context, id string, patch models.TicketPatch) (*models.Ticket, error) {
	record, err := r.app.FindRecordById(TicketsCollection, id)
	if err != nil {
		return nil, notFound(err, status.ErrTicketNotFound)
	}
	ticket := ticketFromRecord(record)
	patch.Apply(&ticket)
	fillTicketRecord(record, &ticket)

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}
	updated := ticketFromRecord(record)
	return &updated, nil
}

func (r *ticketRepo) Delete(ctx context.Context, id string) error {
	record, err := r.app.FindRecordById(TicketsCollection, id)
	if err != nil {
		return notFound(err, status.ErrTicketNotFound)
	}
	return r.app.DeleteWithContext(ctx, record)
}

func (r *ticketRepo) SetVerificationStatus(ctx context.Context, id string, vs models.VerificationStatus) error {
	cols := dbx.Params{"verificationStatus": string(vs), "updated": types.NowDateTime().String()}
	if vs == models.TicketRejected {
		cols["isAdvertised"] = false
	}
	return r.updateOne(ctx, id, cols)
}

func (r *ticketRepo) SetAdvertised(ctx context.Context, id string, advertised bool) error {
	return r.updateOne(ctx, id, dbx.Params{"isAdvertised": advertised, "updated": types.NowDateTime().String()})
}

func (r *ticketRepo) CountAdvertised(ctx context.Context) (int, error) {
	var total int
	err := r.app.DB().
		Select("COUNT(*)").
		From(TicketsCollection).
		Where(dbx.HashExp{"isAdvertised": true}).
		WithContext(ctx).
		Row(&total)
	return total, err
}

func (r *ticketRepo) DecrementQuantity(ctx context.Context, id string, qty int) error {
	ok, err := affected(r.app.DB().
		NewQuery("UPDATE {{tickets}} SET [[quantity]] = [[quantity]] - {:qty}, [[updated]] = {:updated} WHERE [[id]] = {:id} AND [[quantity]] >= {:qty}").
		Bind(dbx.Params{"qty": qty, "id": id, "updated": types.NowDateTime().String()}).
		WithContext(ctx).
		Execute())
	if err != nil {
		return fmt.Errorf("decrement quantity: %w", err)
	}
	if ok {
		return nil
	}

	ticket, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return &status.InsufficientQuantityError{TicketID: id, Requested: qty, Available: ticket.Quantity}
}

func (r *ticketRepo) RejectByVendor(ctx context.Context, vendorEmail string) (int, error) {
	res, err := r.app.DB().Update(TicketsCollection,
		dbx.Params{
			"verificationStatus": string(models.TicketRejected),
			"isAdvertised":       false,
			"updated":            types.NowDateTime().String(),
		},
		dbx.And(
			dbx.HashExp{"vendorEmail": models.NormalizeEmail(vendorEmail)},
			dbx.Or(
				dbx.Not(dbx.HashExp{"verificationStatus": string(models.TicketRejected)}),
				dbx.HashExp{"isAdvertised": true},
			),
		),
	).WithContext(ctx).Execute()
	if err != nil {
		return 0, fmt.Errorf("reject vendor tickets: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *ticketRepo) CountByStatus(ctx context.Context) (map[models.VerificationStatus]int, error) {
	rows, err := countBy(ctx, r.app, TicketsCollection, "verificationStatus")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.VerificationStatus]int, len(rows))
	for _, row := range rows {
		counts[models.VerificationStatus(row.Key)] = row.Total
	}
	return counts, nil
}

func (r *ticketRepo) updateOne(ctx context.Context, id string, cols dbx.Params) error {
	ok, err := affected(r.app.DB().Update(TicketsCollection, cols, dbx.HashExp{"id": id}).WithContext(ctx).Execute())
	if err != nil {
		return err
	}
	if !ok {
		return status.ErrTicketNotFound
	}
	return nil
}
