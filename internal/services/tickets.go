package services

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"ticketbari/internal/auth"
	"ticketbari/internal/logging"
	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

const maxPageSize = 100

type TicketService struct {
	store  store.Store
	ledger *Ledger
}

func NewTicketService(st store.Store, ledger *Ledger) *TicketService {
	return &TicketService{store: st, ledger: ledger}
}

type TicketInput struct {
	Title         string   `json:"title"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	TransportType string   `json:"transportType"`
	Price         float64  `json:"price"`
	Quantity      int      `json:"quantity"`
	DepartureDate string   `json:"departureDate"`
	Perks         []string `json:"perks"`
	Photo         string   `json:"photo"`
	VendorName    string   `json:"vendorName"`
}

func (in TicketInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.From, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.To, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.TransportType, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.Quantity, validation.Min(0)),
		validation.Field(&in.DepartureDate, validation.Required),
	)
}

func validatePatch(p models.TicketPatch) error {
	notBlank := validation.By(func(v any) error {
		if s, ok := v.(*string); ok && s != nil && strings.TrimSpace(*s) == "" {
			return validation.NewError("validation_blank", "cannot be blank")
		}
		return nil
	})
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, notBlank),
		validation.Field(&p.From, notBlank),
		validation.Field(&p.To, notBlank),
		validation.Field(&p.TransportType, notBlank),
		validation.Field(&p.DepartureDate, notBlank),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.Quantity, validation.Min(0)),
	)
}

// Create lists a new ticket for the vendor. New tickets wait for admin
// verification and are not advertised.
func (s *TicketService) Create(ctx context.Context, vendor *auth.Caller, in TicketInput) (*models.Ticket, error) {
	if err := in.Validate(); err != nil {
		return nil, status.Validation(err)
	}

	ticket := &models.Ticket{
		VendorEmail:        vendor.Email,
		VendorName:         strings.TrimSpace(in.VendorName),
		Title:              strings.TrimSpace(in.Title),
		From:               strings.TrimSpace(in.From),
		To:                 strings.TrimSpace(in.To),
		TransportType:      strings.TrimSpace(in.TransportType),
		Price:              in.Price,
		Quantity:           in.Quantity,
		DepartureDate:      in.DepartureDate,
		Perks:              in.Perks,
		Photo:              in.Photo,
		VerificationStatus: models.TicketPending,
	}
	if ticket.Perks == nil {
		ticket.Perks = []string{}
	}
	if err := s.store.Tickets().Insert(ctx, ticket); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("ticket", ticket.ID).Info("ticket created")
	return ticket, nil
}

// Update edits the vendor editable fields of the caller's own ticket.
func (s *TicketService) Update(ctx context.Context, vendor *auth.Caller, id string, patch models.TicketPatch) (*models.Ticket, error) {
	if patch.Empty() {
		return nil, status.Invalid("nothing to update")
	}
	if err := validatePatch(patch); err != nil {
		return nil, status.Validation(err)
	}

	ticket, err := s.store.Tickets().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !vendor.Owns(ticket.VendorEmail) {
		return nil, fmt.Errorf("%w: ticket belongs to another vendor", status.ErrForbidden)
	}

	return s.store.Tickets().Update(ctx, id, patch)
}

// Delete removes a ticket. Vendors may only delete their own.
func (s *TicketService) Delete(ctx context.Context, caller *auth.Caller, id string) error {
	ticket, err := s.store.Tickets().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.Is(models.RoleAdmin) && !caller.Owns(ticket.VendorEmail) {
		return fmt.Errorf("%w: ticket belongs to another vendor", status.ErrForbidden)
	}
	return s.store.Tickets().Delete(ctx, id)
}

// SetStatus records the admin verification decision. Rejecting also takes
// the ticket off the home page.
func (s *TicketService) SetStatus(ctx context.Context, id string, vs models.VerificationStatus) (*models.Ticket, error) {
	if !vs.Valid() {
		return nil, status.Invalid("unknown verification status %q", vs)
	}
	if err := s.store.Tickets().SetVerificationStatus(ctx, id, vs); err != nil {
		return nil, err
	}
	return s.store.Tickets().FindByID(ctx, id)
}

func (s *TicketService) SetAdvertised(ctx context.Context, id string, on bool) (*models.Ticket, error) {
	return s.ledger.ToggleAdvertise(ctx, id, on)
}

func (s *TicketService) Get(ctx context.Context, id string) (*models.Ticket, error) {
	return s.store.Tickets().FindByID(ctx, id)
}

type TicketQuery struct {
	From          string
	To            string
	TransportType string
	Search        string
	Status        string
	Sort          string
	Page          int
	Limit         int
}

func (s *TicketService) List(ctx context.Context, q TicketQuery) ([]models.Ticket, error) {
	filter := store.TicketFilter{
		From:          q.From,
		To:            q.To,
		TransportType: q.TransportType,
		Search:        q.Search,
		Status:        models.VerificationStatus(q.Status),
		Sort:          store.TicketSort(q.Sort),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, status.Invalid("unknown verification status %q", q.Status)
	}
	switch filter.Sort {
	case store.SortNewest, store.SortPriceAsc, store.SortPriceDesc, store.SortDeparture:
	default:
		return nil, status.Invalid("unknown sort %q", q.Sort)
	}

	if q.Limit > 0 {
		filter.Limit = min(q.Limit, maxPageSize)
		if q.Page > 1 {
			filter.Offset = (q.Page - 1) * filter.Limit
		}
	}
	return s.store.Tickets().List(ctx, filter)
}

// Advertised returns the home page tickets, never more than the cap.
func (s *TicketService) Advertised(ctx context.Context) ([]models.Ticket, error) {
	return s.store.Tickets().List(ctx, store.TicketFilter{
		AdvertisedOnly: true,
		Limit:          s.ledger.AdvertiseLimit(),
	})
}

func (s *TicketService) ForVendor(ctx context.Context, email string) ([]models.Ticket, error) {
	return s.store.Tickets().List(ctx, store.TicketFilter{VendorEmail: email})
}
