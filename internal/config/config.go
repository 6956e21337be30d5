package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	GatewaySSLCommerz = "sslcommerz"
	GatewayMock       = "mock"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	CookieSecure     bool

	PaymentGateway          string
	SSLCommerzStoreID       string
	SSLCommerzStorePassword string
	SSLCommerzIsLive        bool

	BaseURL     string
	FrontendURL string

	KafkaBrokers []string

	RedisAddr       string
	RedisPassword   string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("no .env file, using process environment", "error", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 5000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    EnvIntDefault("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    EnvIntDefault("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: EnvDurationDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBConnMaxIdleTime: EnvDurationDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		CookieSecure:     EnvBoolDefault("COOKIE_SECURE", true),

		PaymentGateway:          strings.ToLower(EnvDefault("PAYMENT_GATEWAY", GatewaySSLCommerz)),
		SSLCommerzStoreID:       os.Getenv("SSLCZ_STORE_ID"),
		SSLCommerzStorePassword: os.Getenv("SSLCZ_STORE_PASSWORD"),
		SSLCommerzIsLive:        EnvBoolDefault("SSLCOMMERZ_IS_LIVE", false),

		BaseURL:     strings.TrimRight(EnvDefault("BASE_URL", "http://localhost:5000"), "/"),
		FrontendURL: strings.TrimRight(EnvDefault("FRONTEND_URL", "http://localhost:5173"), "/"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		LoginRateLimit:  EnvIntDefault("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: EnvDurationDefault("LOGIN_RATE_WINDOW", 15*time.Minute),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),
	}
}

// Validate reports every missing or malformed setting the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, missing("DATABASE_URL"))
	}
	if len(c.JWTAccessSecret) == 0 {
		errs = append(errs, missing("JWT_SECRET"))
	}
	if len(c.JWTRefreshSecret) == 0 {
		errs = append(errs, missing("JWT_REFRESH_SECRET"))
	}

	switch c.PaymentGateway {
	case GatewaySSLCommerz:
		if c.SSLCommerzStoreID == "" {
			errs = append(errs, missing("SSLCZ_STORE_ID"))
		}
		if c.SSLCommerzStorePassword == "" {
			errs = append(errs, missing("SSLCZ_STORE_PASSWORD"))
		}
	case GatewayMock:
	default:
		errs = append(errs, fmt.Errorf("PAYMENT_GATEWAY must be %q or %q, got %q", GatewaySSLCommerz, GatewayMock, c.PaymentGateway))
	}

	for name, raw := range map[string]string{"BASE_URL": c.BaseURL, "FRONTEND_URL": c.FrontendURL} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s is not an absolute url: %q", name, raw))
		}
	}

	return errors.Join(errs...)
}

func missing(name string) error {
	return fmt.Errorf("missing required env %s", name)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
