package memstore

import (
	"context"

	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type ticketRepo struct {
	s    *Store
	inTx bool
}

func (r *ticketRepo) Insert(_ context.Context, ticket *models.Ticket) error {
	return r.s.write(r.inTx, func(d *data) error {
		if ticket.ID == "" {
			ticket.ID = newID()
		}
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = r.s.now()
		}
		ticket.VendorEmail = models.NormalizeEmail(ticket.VendorEmail)
		d.tickets[ticket.ID] = *ticket
		return nil
	})
}

func (r *ticketRepo) FindByID(_ context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.s.read(func(d *data) error {
		t, ok := d.tickets[id]
		if !ok {
			return status.ErrTicketNotFound
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepo) List(_ context.Context, filter store.TicketFilter) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	_ = r.s.read(func(d *data) error {
		for _, t := range d.tickets {
			if filter.Matches(&t) {
				tickets = append(tickets, t)
			}
		}
		return nil
	})
	return store.SortTickets(tickets, filter), nil
}

func (r *ticketRepo) Update(_ context.Context, id string, patch models.TicketPatch) (*models.Ticket, error) {
	var updated models.Ticket
	err := r.s.write(r.inTx, func(d *data) error {
		t, ok := d.tickets[id]
		if !ok {
			return status.ErrTicketNotFound
		}
		patch.Apply(&t)
		d.tickets[id] = t
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	return r.s.write(r.inTx, func(d *data) error {
		if _, ok := d.tickets[id]; !ok {
			return status.ErrTicketNotFound
		}
		delete(d.tickets, id)
		return nil
	})
}

func (r *ticketRepo) SetVerificationStatus(_ context.Context, id string, vs models.VerificationStatus) error {
	return r.mutate(id, func(t *models.Ticket) {
		t.VerificationStatus = vs
		if vs == models.TicketRejected {
			t.IsAdvertised = false
		}
	})
}

func (r *ticketRepo) SetAdvertised(_ context.Context, id string, advertised bool) error {
	return r.mutate(id, func(t *models.Ticket) {
		t.IsAdvertised = advertised
	})
}

func (r *ticketRepo) CountAdvertised(_ context.Context) (int, error) {
	count := 0
	_ = r.s.read(func(d *data) error {
		for _, t := range d.tickets {
			if t.IsAdvertised {
				count++
			}
		}
		return nil
	})
	return count, nil
}

func (r *ticketRepo) DecrementQuantity(_ context.Context, id string, qty int) error {
	return r.s.write(r.inTx, func(d *data) error {
		t, ok := d.tickets[id]
		if !ok {
			return status.ErrTicketNotFound
		}
		if t.Quantity < qty {
			return &status.InsufficientQuantityError{TicketID: id, Requested: qty, Available: t.Quantity}
		}
		t.Quantity -= qty
		d.tickets[id] = t
		return nil
	})
}

func (r *ticketRepo) RejectByVendor(_ context.Context, vendorEmail string) (int, error) {
	modified := 0
	err := r.s.write(r.inTx, func(d *data) error {
		for id, t := range d.tickets {
			if !models.SameEmail(t.VendorEmail, vendorEmail) {
				continue
			}
			if t.VerificationStatus == models.TicketRejected && !t.IsAdvertised {
				continue
			}
			t.VerificationStatus = models.TicketRejected
			t.IsAdvertised = false
			d.tickets[id] = t
			modified++
		}
		return nil
	})
	return modified, err
}

func (r *ticketRepo) CountByStatus(_ context.Context) (map[models.VerificationStatus]int, error) {
	counts := map[models.VerificationStatus]int{}
	_ = r.s.read(func(d *data) error {
		for _, t := range d.tickets {
			counts[t.VerificationStatus]++
		}
		return nil
	})
	return counts, nil
}

func (r *ticketRepo) mutate(id string, fn func(t *models.Ticket)) error {
	return r.s.write(r.inTx, func(d *data) error {
		t, ok := d.tickets[id]
		if !ok {
			return status.ErrTicketNotFound
		}
		fn(&t)
		d.tickets[id] = t
		return nil
	})
}
