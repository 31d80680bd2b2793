package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/delizzia/pos-backend/internal/analytics"
	"github.com/delizzia/pos-backend/internal/cron"
	"github.com/delizzia/pos-backend/internal/menu"
	"github.com/delizzia/pos-backend/internal/orders"
	"github.com/delizzia/pos-backend/internal/ratetable"
	"github.com/delizzia/pos-backend/pkg/config"
	"github.com/delizzia/pos-backend/pkg/db"
	"github.com/delizzia/pos-backend/pkg/env"
	"github.com/delizzia/pos-backend/pkg/instance"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/metrics"
	"github.com/delizzia/pos-backend/pkg/migrate"
	"github.com/delizzia/pos-backend/pkg/redis"
)

const metricsAddrEnv = "DELIZZIA_WORKER_METRICS_ADDR"

func main() {
	logg := logger.New(logger.Options{ServiceName: "report-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "report-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	loc, err := cfg.Business.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid business timezone", err)
		os.Exit(1)
	}

	// Reports read stored order figures only, so the rate table is never consulted for pricing here.
	rates, err := ratetable.FromStrings(cfg.Business.CommissionRates, cfg.Business.PackagingCosts)
	if err != nil {
		logg.Error(context.Background(), "invalid rate table", err)
		os.Exit(1)
	}

	menuRepo := menu.NewRepository(dbClient.DB())
	menuService, err := menu.NewService(menuRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create menu service", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(dbClient.DB()),
		Menu:     menuRepo,
		Tx:       dbClient,
		Rates:    ratetable.Static(rates),
		Location: loc,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	analyticsParams := analytics.ServiceParams{Orders: orderService, Menu: menuService, Logger: logg}
	if err := analytics.ApplyBusinessConfig(&analyticsParams, cfg.Business); err != nil {
		logg.Error(context.Background(), "invalid business config", err)
		os.Exit(1)
	}
	analyticsService, err := analytics.NewService(analyticsParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	exportJob, err := cron.NewReportExportJob(cron.ReportExportJobParams{
		Logger:   logg,
		Exporter: analyticsService,
		Dir:      cfg.Cron.ReportExportDir,
		Location: loc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create report export job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("report-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	service, err := cron.NewService(cron.ServiceParams{
		Name:     "report-worker",
		Logger:   logg,
		Registry: cron.NewRegistry(exportJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"instance":   instance.ID(),
		"export_dir": cfg.Cron.ReportExportDir,
		"interval":   cfg.Cron.Interval.String(),
	})

	if addr := env.Get(metricsAddrEnv, ""); addr != "" {
		go serveMetrics(ctx, logg, addr, reg)
	}

	logg.Info(ctx, "starting report worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "report worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "report worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, addr string, reg *prometheus.Registry) {
	server := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "metrics server stopped", err)
	}
}
