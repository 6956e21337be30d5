package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/ratelimit"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
)

// storefront serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := logging.New(cfg.ServiceName, cfg.LogLevel)
		slog.SetDefault(logger)

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := db.Open(startCtx, dbOptions(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()
	if err := db.Migrate(startCtx, conn); err != nil {
		return err
	}

	gateway, err := payment.New(&cfg)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod := events.NewProducer(cfg.KafkaBrokers)
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka_close_error", "error", err)
			}
		}()
		publisher = prod
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS not set")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
	}

	r := repo.New(conn)
	products := &service.ProductService{Repo: r}
	var es *search.Client
	if cfg.ESURL != "" {
		es, err = search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex)
		if err != nil {
			return err
		}
		products.Index = es
	}

	m := metrics.New()
	issuer := tokens.Issuer{AccessSecret: cfg.JWTAccessSecret, RefreshSecret: cfg.JWTRefreshSecret}
	authSvc := &service.AuthService{Repo: r, Issuer: issuer, Events: publisher}
	coupons := &service.CouponService{Repo: r}

	deps := &httpserver.Deps{
		Auth:    &authmw.Middleware{AccessSecret: issuer.AccessSecret, Refresher: authSvc, SecureCookies: cfg.CookieSecure},
		Metrics: m,
		Ready:   readiness(conn, rdb, es),

		AuthHandler:   &httpserver.AuthHTTP{Svc: authSvc, SecureCookies: cfg.CookieSecure},
		CartHandler:   &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: publisher}},
		CouponHandler: &httpserver.CouponHTTP{Svc: coupons},
		PaymentHandler: &httpserver.PaymentHTTP{
			Svc: &service.CheckoutService{
				Repo:    r,
				Coupons: coupons,
				Gateway: gateway,
				Events:  publisher,
				BaseURL: cfg.BaseURL,
			},
			Users:       authSvc,
			FrontendURL: cfg.FrontendURL,
			Metrics:     m,
		},
		ProductHandler: &httpserver.ProductHTTP{Svc: products},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r}},
	}
	if rdb != nil {
		deps.RateLimit = ratelimit.New(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow).Middleware()
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowCredentials: true,
		}),
		loggingmw.RequestLogger(logger),
		m.Middleware(),
	)
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_started", "addr", srv.Addr, "gateway", cfg.PaymentGateway)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	logger.Info("shutdown_complete")
	return nil
}

func dbOptions(cfg config.Config) db.Options {
	return db.Options{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}
}

// readiness pings every configured backing store.
func readiness(conn *gorm.DB, rdb *redis.Client, es *search.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		if es != nil {
			if err := es.Ping(ctx); err != nil {
				return fmt.Errorf("elasticsearch: %w", err)
			}
		}
		return nil
	}
}
