package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ticketbari/config"
	"ticketbari/internal/auth"
	"ticketbari/internal/handlers"
	"ticketbari/internal/logging"
	"ticketbari/internal/services"
	"ticketbari/internal/services/payment"
	"ticketbari/internal/store"
	"ticketbari/internal/store/memstore"
	"ticketbari/internal/store/mongostore"
	"ticketbari/internal/store/pbstore"
	_ "ticketbari/migrations"
	"ticketbari/monitoring"
	"ticketbari/security"
	"ticketbari/utils"
)

const lockWait = 2 * time.Second

func Start() error {
	cfg := config.LoadConfig()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	app := pocketbase.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: !cfg.IsProduction(),
	})
	app.RootCmd.AddCommand(promoteAdminCmd(app, cfg), tokenCmd(cfg))

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		deps, closeAll, err := wire(ctx, app, cfg)
		if err != nil {
			return fmt.Errorf("startup: %w", err)
		}

		handlers.Register(se.Router, deps)
		go runBackground(ctx, cfg, deps.Reports)

		app.OnTerminate().BindFunc(func(te *core.TerminateEvent) error {
			cancel()
			closeAll()
			return te.Next()
		})

		logrus.WithFields(logrus.Fields{
			"store":   cfg.StoreDriver,
			"auth":    cfg.AuthProvider,
			"payment": cfg.PaymentProvider,
			"redis":   deps.Redis != nil,
		}).Info("Server routes registered")
		return se.Next()
	})

	return app.Start()
}

// wire builds the services behind the HTTP surface. The returned func
// releases the store and redis connections.
func wire(ctx context.Context, app core.App, cfg *config.Config) (handlers.Deps, func(), error) {
	st, err := openStore(ctx, app, cfg)
	if err != nil {
		return handlers.Deps{}, nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		if redisClient, err = utils.NewRedisClient(ctx, cfg.RedisURL); err != nil {
			_ = st.Close(context.Background())
			return handlers.Deps{}, nil, err
		}
	}

	closeAll := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logrus.WithError(err).Warn("closing store")
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logrus.WithError(err).Warn("closing redis")
			}
		}
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		closeAll()
		return handlers.Deps{}, nil, err
	}

	gateway, err := payment.NewFactory().Create(payment.Provider(cfg.PaymentProvider), payment.Config{
		StripeSecretKey:    cfg.StripeSecretKey,
		Timeout:            cfg.GatewayTimeout,
		BreakerMaxFailures: cfg.BreakerMaxFails,
		BreakerOpenTimeout: cfg.BreakerOpenFor,
	})
	if err != nil {
		closeAll()
		return handlers.Deps{}, nil, err
	}

	var (
		locker  services.Locker = services.NopLocker{}
		limiter *security.RateLimiter
	)
	if redisClient != nil {
		locker = services.NewRedisLocker(redisClient, cfg.SeatLockTTL, lockWait)
		limiter = security.NewRateLimiter(redisClient, cfg.RateLimitRPM)
	}

	notifier := services.NewPubNubNotifier(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubSecretKey, cfg.PubNubUserID)
	ledger := services.NewLedger(st, locker, cfg.AdvertiseLimit)

	return handlers.Deps{
		Store:    st,
		Redis:    redisClient,
		Guard:    auth.NewGuard(verifier, st.Users(), cfg.DemoAdminEmail),
		Limiter:  limiter,
		Users:    services.NewUserService(st),
		Tickets:  services.NewTicketService(st, ledger),
		Bookings: services.NewBookingService(st, ledger, notifier),
		Ledger:   ledger,
		Payments: services.NewPaymentService(st, ledger, gateway, notifier, cfg.PaymentCurrency),
		Reports:  services.NewReportService(st, cfg.AdvertiseLimit, cfg.StatsMonthLayout),
		ETickets: services.NewETicketService(st),
	}, closeAll, nil
}

func openStore(ctx context.Context, app core.App, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StorePocketBase:
		return pbstore.New(app), nil
	case config.StoreMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	case config.StoreMemory:
		logrus.Warn("using the in-memory store, data is lost on restart")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		return auth.NewFirebaseVerifier(ctx, cfg.FirebaseCredentials)
	case config.AuthJWT:
		return auth.NewHMACVerifier(cfg.AccessTokenSecret)
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
}

// runBackground samples store gauges and serves /metrics until ctx ends.
func runBackground(ctx context.Context, cfg *config.Config, stats monitoring.Stats) {
	if !cfg.EnableMetrics {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		monitoring.NewMonitor(stats, cfg.MetricsInterval).Run(gctx)
		return nil
	})
	g.Go(func() error {
		logrus.WithField("addr", srv.Addr).Info("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("background services stopped")
	}
}
