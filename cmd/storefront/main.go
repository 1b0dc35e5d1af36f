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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/jobs"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	"github.com/Skotchmaster/storefront/pkg/search"
	"github.com/Skotchmaster/storefront/services/auth"
	"github.com/Skotchmaster/storefront/services/catalog"
	"github.com/Skotchmaster/storefront/services/feedback"
	"github.com/Skotchmaster/storefront/services/order"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	config.MustOneOf(cfg.DatabaseDriver, "DB_DRIVER", db.DriverPostgres, db.DriverSQLite)
	config.MustOneOf(cfg.OrderAddressPolicy, "ORDER_ADDRESS_POLICY", "full", "minimal")

	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()

	var models []any
	models = append(models, auth.Models()...)
	models = append(models, catalog.Models()...)
	models = append(models, order.Models()...)
	models = append(models, feedback.Models()...)
	if err := db.Migrate(ctx, gdb, models...); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	pub := events.New(cfg.KafkaBrokers)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}()

	var index *search.ProductIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(ctx, search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			// Search falls back to the database.
			logger.Warn("elasticsearch_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			index = &search.ProductIndex{ES: es, Index: cfg.ESIndex}
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	shop := metrics.NewShopMetrics(reg)

	authModule := auth.New(auth.Options{
		DB:            gdb,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		CookieSecure:  cfg.CookieSecure,
		BcryptCost:    cfg.BcryptCost,
	})
	orderModule, err := order.New(order.Options{
		DB:            gdb,
		AddressPolicy: cfg.OrderAddressPolicy,
		Publisher:     pub,
		Metrics:       shop,
	})
	if err != nil {
		return err
	}

	deps := &httpserver.Deps{
		DB:       gdb,
		Logger:   logger,
		Gatherer: reg,
		Metrics:  metrics.NewServerMetrics(reg, "api"),
		Auth: &authmw.Middleware{
			JWTSecret:    cfg.JWTAccessSecret,
			Refresher:    authModule.Service,
			CookieSecure: cfg.CookieSecure,
		},
		Modules: []httpserver.Module{
			authModule,
			catalog.New(catalog.Options{DB: gdb, Index: index, Publisher: pub}),
			orderModule,
			feedback.New(feedback.Options{DB: gdb, Publisher: pub, Metrics: shop}),
		},
	}
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		c.SkipPaths = []string{"/health/live", "/health/ready", "/metrics", "/auth/login", "/auth/user-register", "/auth/refresh"}
		deps.CSRF = &c
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	httpserver.Register(e, deps)

	loc := time.Local
	if cfg.DigestTimezone != "" {
		if loc, err = time.LoadLocation(cfg.DigestTimezone); err != nil {
			return fmt.Errorf("SALES_DIGEST_TZ: %w", err)
		}
	}
	sched := jobs.New(loc, logger)
	if err := orderModule.ScheduleDigest(sched, cfg.DigestSchedule); err != nil {
		return fmt.Errorf("SALES_DIGEST_SCHEDULE: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		logger.Info("server_started", "addr", addr, "db_driver", cfg.DatabaseDriver, "kafka", len(cfg.KafkaBrokers) > 0, "search", index != nil)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("shutdown_complete")
	return err
}
