package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/redis/go-redis/v9"

	"ticketbari/internal/auth"
	"ticketbari/internal/services"
	"ticketbari/internal/store"
	"ticketbari/models"
	"ticketbari/security"
	"ticketbari/utils"
)

// Deps is everything the HTTP surface needs. Limiter and Redis are optional.
type Deps struct {
	Store   store.Store
	Redis   *redis.Client
	Guard   *auth.Guard
	Limiter *security.RateLimiter

	Users    *services.UserService
	Tickets  *services.TicketService
	Bookings *services.BookingService
	Ledger   *services.Ledger
	Payments *services.PaymentService
	Reports  *services.ReportService
	ETickets *services.ETicketService
}

// Register mounts the marketplace routes on r.
func Register(r *router.Router[*core.RequestEvent], d Deps) {
	a := NewAuthenticator(d.Guard)
	if d.Limiter != nil {
		d.Limiter.KeyFunc = rateLimitKey
	}

	userHandler := NewUserHandler(d.Users, a)
	ticketHandler := NewTicketHandler(d.Tickets, d.Ledger, a)
	bookingHandler := NewBookingHandler(d.Bookings, d.ETickets, a)
	paymentHandler := NewPaymentHandler(d.Payments, a)
	statsHandler := NewStatsHandler(d.Reports, a)

	api := r.Group("")
	api.BindFunc(requestLogger)

	// write routes are throttled after the caller is known
	write := func(route *router.Route[*core.RequestEvent], roles ...models.Role) {
		route.BindFunc(a.Require(roles...), security.BotFilter(), d.Limiter.WriteLimit())
	}
	read := func(route *router.Route[*core.RequestEvent], roles ...models.Role) {
		route.BindFunc(a.Require(roles...))
	}

	api.GET("/{$}", func(e *core.RequestEvent) error {
		return e.String(http.StatusOK, "TicketBari Server is running")
	})
	api.GET("/health", healthCheck(d.Store, d.Redis))

	// Users
	write(api.POST("/users", userHandler.SignIn))
	read(api.GET("/users", userHandler.List), models.RoleAdmin)
	read(api.GET("/users/role/{email}", userHandler.Role))
	write(api.PATCH("/users/admin/{id}", userHandler.SetRole), models.RoleAdmin)
	write(api.PATCH("/users/fraud/{id}", userHandler.MarkFraud), models.RoleAdmin)

	// Tickets
	api.GET("/tickets", ticketHandler.List)
	api.GET("/tickets/advertised", ticketHandler.Advertised)
	api.GET("/tickets/taken-seats/{id}", ticketHandler.TakenSeats)
	api.GET("/tickets/{id}", ticketHandler.Get)
	read(api.GET("/tickets/vendor/{email}", ticketHandler.ForVendor), models.RoleVendor, models.RoleAdmin)
	write(api.POST("/tickets", ticketHandler.Create), models.RoleVendor)
	write(api.PATCH("/tickets/{id}", ticketHandler.Update), models.RoleVendor)
	write(api.PATCH("/tickets/status/{id}", ticketHandler.SetStatus), models.RoleAdmin)
	write(api.PATCH("/tickets/advertise/{id}", ticketHandler.SetAdvertised), models.RoleAdmin)
	write(api.DELETE("/tickets/{id}", ticketHandler.Delete), models.RoleVendor, models.RoleAdmin)

	// Bookings
	read(api.GET("/bookings", bookingHandler.ForCustomer))
	read(api.GET("/bookings/vendor", bookingHandler.ForVendor), models.RoleVendor, models.RoleAdmin)
	read(api.GET("/bookings/{id}/eticket", bookingHandler.ETicket))
	write(api.POST("/bookings", bookingHandler.Create), models.RoleUser)
	write(api.PATCH("/bookings/status/{id}", bookingHandler.Decide), models.RoleVendor)
	write(api.DELETE("/bookings/{id}", bookingHandler.Cancel))

	// Payments
	write(api.POST("/create-payment-intent", paymentHandler.CreateIntent), models.RoleUser)
	write(api.POST("/payments", paymentHandler.Record), models.RoleUser)
	read(api.GET("/payments/{email}", paymentHandler.History))

	// Stats
	read(api.GET("/vendor-stats/{email}", statsHandler.Vendor), models.RoleVendor, models.RoleAdmin)
	read(api.GET("/admin-stats", statsHandler.Admin), models.RoleAdmin)
	read(api.GET("/user-stats/{email}", statsHandler.User))
}

func healthCheck(st store.Store, redisClient *redis.Client) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()

		checks := map[string]string{"store": "ok"}
		healthy := true
		if err := st.Ping(ctx); err != nil {
			checks["store"] = err.Error()
			healthy = false
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := utils.RedisHealthCheck(ctx, redisClient); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}

		if !healthy {
			return e.JSON(http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "checks": checks})
		}
		return e.JSON(http.StatusOK, map[string]any{"status": "healthy", "checks": checks})
	}
}
