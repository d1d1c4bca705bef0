package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	StoreMemory     = "memory"
	StorePocketBase = "pocketbase"
	StoreMongo      = "mongo"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	// Server configuration
	Environment string
	LogLevel    string
	LogFormat   string

	// Storage
	StoreDriver      string
	MongoURI         string
	MongoDatabase    string
	MongoTimeout     time.Duration
	AdvertiseLimit   int
	StatsMonthLayout string

	// Redis configuration
	RedisURL     string
	SeatLockTTL  time.Duration
	RateLimitRPM int

	// Authentication
	AuthProvider        string
	FirebaseCredentials string
	AccessTokenSecret   string
	AccessTokenTTL      time.Duration
	DemoAdminEmail      string

	// Payments
	PaymentProvider string
	StripeSecretKey string
	PaymentCurrency string
	GatewayTimeout  time.Duration
	BreakerMaxFails int
	BreakerOpenFor  time.Duration

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUserID       string

	// Monitoring
	EnableMetrics   bool
	MetricsPort     string
	MetricsInterval time.Duration
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}

	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		// Storage
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StorePocketBase)),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGODB_DATABASE", "TicketBariDB"),
		MongoTimeout:     getEnvAsDuration("MONGODB_TIMEOUT", "10s"),
		AdvertiseLimit:   getEnvAsInt("ADVERTISE_LIMIT", 6),
		StatsMonthLayout: getEnv("STATS_MONTH_LAYOUT", "Jan"),

		// Redis
		RedisURL:     getEnv("REDIS_URL", ""),
		SeatLockTTL:  getEnvAsDuration("SEAT_LOCK_TTL", "5s"),
		RateLimitRPM: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),

		// Auth
		AuthProvider:        strings.ToLower(getEnv("AUTH_PROVIDER", AuthJWT)),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		AccessTokenSecret:   getEnv("ACCESS_TOKEN_SECRET", ""),
		AccessTokenTTL:      getEnvAsDuration("ACCESS_TOKEN_TTL", "24h"),
		DemoAdminEmail:      getEnv("DEMO_ADMIN_EMAIL", ""),

		// Payments
		PaymentProvider: strings.ToLower(getEnv("PAYMENT_PROVIDER", "mock")),
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCurrency: getEnv("PAYMENT_CURRENCY", "usd"),
		GatewayTimeout:  getEnvAsDuration("PAYMENT_GATEWAY_TIMEOUT", "15s"),
		BreakerMaxFails: getEnvAsInt("BREAKER_MAX_FAILURES", 5),
		BreakerOpenFor:  getEnvAsDuration("BREAKER_OPEN_TIMEOUT", "30s"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "ticketbari-server"),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsInterval: getEnvAsDuration("METRICS_INTERVAL", "30s"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := cast.ToIntE(getEnv(key, "")); err == nil && os.Getenv(key) != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := cast.ToBoolE(getEnv(key, "")); err == nil && os.Getenv(key) != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if duration, err := cast.ToDurationE(getEnv(key, defaultValue)); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	return cast.ToDuration(defaultValue)
}
