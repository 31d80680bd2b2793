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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/delizzia/pos-backend/api/controllers"
	"github.com/delizzia/pos-backend/api/routes"
	"github.com/delizzia/pos-backend/internal/analytics"
	"github.com/delizzia/pos-backend/internal/auth"
	"github.com/delizzia/pos-backend/internal/cron"
	"github.com/delizzia/pos-backend/internal/menu"
	"github.com/delizzia/pos-backend/internal/orders"
	"github.com/delizzia/pos-backend/internal/ratetable"
	"github.com/delizzia/pos-backend/internal/users"
	"github.com/delizzia/pos-backend/pkg/auth/session"
	"github.com/delizzia/pos-backend/pkg/config"
	"github.com/delizzia/pos-backend/pkg/db"
	"github.com/delizzia/pos-backend/pkg/instance"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/metrics"
	"github.com/delizzia/pos-backend/pkg/migrate"
	"github.com/delizzia/pos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	loc, err := cfg.Business.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(reg)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	if _, err := authService.EnsureOwner(ctx, cfg.Bootstrap); err != nil {
		return err
	}

	initialRates, err := ratetable.FromStrings(cfg.Business.CommissionRates, cfg.Business.PackagingCosts)
	if err != nil {
		return err
	}
	rateStore := ratetable.NewStore(initialRates)
	rateSource := ratetable.NewRedisSource(redisClient)

	menuRepo := menu.NewRepository(dbClient.DB())
	menuService, err := menu.NewService(menuRepo, logg)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(dbClient.DB()),
		Menu:     menuRepo,
		Tx:       dbClient,
		Rates:    rateStore,
		Location: loc,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	analyticsParams := analytics.ServiceParams{
		Orders:  orderService,
		Menu:    menuService,
		Metrics: orderMetrics,
		Logger:  logg,
	}
	if err := analytics.ApplyBusinessConfig(&analyticsParams, cfg.Business); err != nil {
		return err
	}
	analyticsService, err := analytics.NewService(analyticsParams)
	if err != nil {
		return err
	}

	reloadJob, err := cron.NewRateReloadJob(cron.RateReloadJobParams{
		Logger:  logg,
		Store:   rateStore,
		Sources: []ratetable.Source{rateSource, ratetable.FileSource{Path: cfg.Business.RateTableFile}},
	})
	if err != nil {
		return err
	}
	// Every replica keeps its own copy of the table, so the lock is process local.
	reloader, err := cron.NewService(cron.ServiceParams{
		Name:     "rate-reload",
		Logger:   logg,
		Registry: cron.NewRegistry(reloadJob),
		Lock:     &cron.LocalLock{},
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Business.RateReloadInterval,
	})
	if err != nil {
		return err
	}
	go func() {
		if err := reloader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "rate reloader stopped", err)
		}
	}()

	handler := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Sessions: sessionManager,
		Redis:    redisClient,
		Health: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Auth:        authService,
		Menu:        menuService,
		Orders:      orderService,
		Analytics:   analyticsService,
		Rates:       rateStore,
		Publisher:   rateSource,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"timezone": loc.String(),
	})
	logg.Info(logCtx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logg.Info(logCtx, "shutting down api server")
	return server.Shutdown(shutdownCtx)
}
