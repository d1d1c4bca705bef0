package monitoring

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"ticketbari/models"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketbari_booking_operations_total",
			Help: "Booking, payment and advertise operations by outcome",
		},
		[]string{"operation", "result"},
	)

	advertisedTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticketbari_advertised_tickets",
			Help: "Tickets currently advertised on the home page",
		},
	)

	ticketsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticketbari_tickets",
			Help: "Tickets per verification status",
		},
		[]string{"status"},
	)

	usersByRole = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticketbari_users",
			Help: "Accounts per role",
		},
		[]string{"role"},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticketbari_goroutines",
			Help: "Current number of goroutines",
		},
	)

	seatLockDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketbari_ticket_lock_duration_seconds",
			Help:    "Time spent holding the distributed ticket lock",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	gatewayRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketbari_payment_gateway_seconds",
			Help:    "Payment gateway call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "call", "result"},
	)
)

// Stats is the read side the monitor samples.
type Stats interface {
	CountAdvertised(ctx context.Context) (int, error)
	CountTicketsByStatus(ctx context.Context) (map[models.VerificationStatus]int, error)
	CountUsersByRole(ctx context.Context) (map[models.Role]int, error)
}

type Monitor struct {
	stats    Stats
	interval time.Duration
}

func NewMonitor(stats Stats, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{stats: stats, interval: interval}
}

// Run samples the gauges until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.Collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) Collect(ctx context.Context) {
	goroutineCount.Set(float64(runtime.NumGoroutine()))

	if n, err := m.stats.CountAdvertised(ctx); err == nil {
		advertisedTickets.Set(float64(n))
	} else {
		logrus.WithError(err).Warn("metrics: count advertised tickets")
	}

	if counts, err := m.stats.CountTicketsByStatus(ctx); err == nil {
		for _, s := range models.VerificationStatuses {
			ticketsByStatus.WithLabelValues(string(s)).Set(float64(counts[s]))
		}
	} else {
		logrus.WithError(err).Warn("metrics: count tickets by status")
	}

	if counts, err := m.stats.CountUsersByRole(ctx); err == nil {
		for _, r := range models.Roles {
			usersByRole.WithLabelValues(string(r)).Set(float64(counts[r]))
		}
	} else {
		logrus.WithError(err).Warn("metrics: count users by role")
	}
}

// TrackOperation counts a domain operation outcome, e.g. ("reserve", "seat_conflict").
func TrackOperation(operation, result string) {
	bookingOperations.WithLabelValues(operation, result).Inc()
}

func TrackSeatLock(operation string, held time.Duration) {
	seatLockDuration.WithLabelValues(operation).Observe(held.Seconds())
}

func TrackGatewayCall(provider, call, result string, took time.Duration) {
	gatewayRequests.WithLabelValues(provider, call, result).Observe(took.Seconds())
}
