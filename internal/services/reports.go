package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"ticketbari/internal/store"
	"ticketbari/models"
)

// ReportService computes dashboard aggregates. It never writes.
type ReportService struct {
	store          store.Store
	advertiseLimit int
	monthLayout    string
}

func NewReportService(st store.Store, advertiseLimit int, monthLayout string) *ReportService {
	if advertiseLimit <= 0 {
		advertiseLimit = DefaultAdvertiseLimit
	}
	if monthLayout == "" {
		monthLayout = "Jan"
	}
	return &ReportService{store: st, advertiseLimit: advertiseLimit, monthLayout: monthLayout}
}

// VendorStats sums paid bookings per ticket title. Tickets sharing a title
// share a chart entry.
func (s *ReportService) VendorStats(ctx context.Context, email string) (*models.VendorStats, error) {
	var (
		tickets  []models.Ticket
		bookings []models.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tickets, err = s.store.Tickets().List(gctx, store.TicketFilter{VendorEmail: email})
		return err
	})
	g.Go(func() (err error) {
		bookings, err = s.store.Bookings().List(gctx, store.BookingFilter{VendorEmail: email})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	byTitle := make(map[string]decimal.Decimal)
	var titles []string
	for _, b := range bookings {
		if b.Status != models.BookingPaid {
			continue
		}
		price := decimal.NewFromFloat(b.TotalPrice)
		revenue = revenue.Add(price)

		if _, ok := byTitle[b.TicketTitle]; !ok {
			titles = append(titles, b.TicketTitle)
		}
		byTitle[b.TicketTitle] = byTitle[b.TicketTitle].Add(price)
	}

	chart := make([]models.ChartPoint, 0, len(titles))
	for _, title := range titles {
		chart = append(chart, models.ChartPoint{Name: title, Value: byTitle[title].InexactFloat64()})
	}

	return &models.VendorStats{
		TotalTickets:  len(tickets),
		TotalBookings: len(bookings),
		TotalRevenue:  revenue.InexactFloat64(),
		ChartData:     chart,
	}, nil
}

func (s *ReportService) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{AdvertiseLimit: s.advertiseLimit}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.UsersByRole, err = s.CountUsersByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TicketsByStatus, err = s.CountTicketsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.AdvertisedCount, err = s.CountAdvertised(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range stats.UsersByRole {
		stats.TotalUsers += n
	}
	for _, n := range stats.TicketsByStatus {
		stats.TotalTickets += n
	}
	return stats, nil
}

func (s *ReportService) UserStats(ctx context.Context, email string) (*models.UserStats, error) {
	var (
		bookings []models.Booking
		payments []models.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bookings, err = s.store.Bookings().List(gctx, store.BookingFilter{CustomerEmail: email})
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.store.Payments().ListByEmail(gctx, email)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byStatus := make(map[models.BookingStatus]int, len(models.BookingStatuses))
	for _, st := range models.BookingStatuses {
		byStatus[st] = 0
	}
	for _, b := range bookings {
		byStatus[b.Status]++
	}

	spent := decimal.Zero
	for _, p := range payments {
		spent = spent.Add(decimal.NewFromFloat(p.Price))
	}

	return &models.UserStats{
		TotalBookings:    len(bookings),
		TotalSpent:       spent.InexactFloat64(),
		BookingsByStatus: byStatus,
		MonthlySpending:  s.monthlySpending(payments),
	}, nil
}

// monthlySpending buckets payments by calendar month in chronological order.
func (s *ReportService) monthlySpending(payments []models.Payment) []models.MonthlySpend {
	type bucket struct {
		month time.Time
		sum   decimal.Decimal
	}

	buckets := make(map[time.Time]*bucket)
	for _, p := range payments {
		date := p.Date.UTC()
		month := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[month]
		if !ok {
			b = &bucket{month: month}
			buckets[month] = b
		}
		b.sum = b.sum.Add(decimal.NewFromFloat(p.Price))
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].month.Before(ordered[j].month) })

	series := make([]models.MonthlySpend, 0, len(ordered))
	for _, b := range ordered {
		series = append(series, models.MonthlySpend{
			Month:  b.month.Format(s.monthLayout),
			Amount: b.sum.InexactFloat64(),
		})
	}
	return series
}

func (s *ReportService) CountAdvertised(ctx context.Context) (int, error) {
	return s.store.Tickets().CountAdvertised(ctx)
}

func (s *ReportService) CountTicketsByStatus(ctx context.Context) (map[models.VerificationStatus]int, error) {
	counts, err := s.store.Tickets().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[models.VerificationStatus]int, len(models.VerificationStatuses))
	for _, st := range models.VerificationStatuses {
		out[st] = counts[st]
	}
	return out, nil
}

func (s *ReportService) CountUsersByRole(ctx context.Context) (map[models.Role]int, error) {
	counts, err := s.store.Users().CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[models.Role]int, len(models.Roles))
	for _, r := range models.Roles {
		out[r] = counts[r]
	}
	return out, nil
}
