package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/delizzia/pos-backend/api/controllers"
	analyticscontrollers "github.com/delizzia/pos-backend/api/controllers/analytics"
	authcontrollers "github.com/delizzia/pos-backend/api/controllers/auth"
	menucontrollers "github.com/delizzia/pos-backend/api/controllers/menu"
	ordercontrollers "github.com/delizzia/pos-backend/api/controllers/orders"
	ratecontrollers "github.com/delizzia/pos-backend/api/controllers/rates"
	reportcontrollers "github.com/delizzia/pos-backend/api/controllers/reports"
	"github.com/delizzia/pos-backend/api/middleware"
	"github.com/delizzia/pos-backend/internal/analytics"
	"github.com/delizzia/pos-backend/internal/auth"
	"github.com/delizzia/pos-backend/internal/menu"
	"github.com/delizzia/pos-backend/internal/orders"
	"github.com/delizzia/pos-backend/internal/ratetable"
	"github.com/delizzia/pos-backend/pkg/auth/session"
	"github.com/delizzia/pos-backend/pkg/config"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/metrics"
	"github.com/delizzia/pos-backend/pkg/redis"
)

// Dependencies is everything the HTTP surface needs. Nil services answer 500;
// a nil Redis disables login throttling and idempotent replays.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker
	Redis    *redis.Client
	Health   map[string]controllers.Pinger

	Auth      auth.Service
	Menu      menu.Service
	Orders    orders.Service
	Analytics analytics.Service
	Rates     *ratetable.Store
	Publisher ratecontrollers.Publisher

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.LoginRateLimitPolicy{
		Window:     cfg.RateLimit.LoginWindow,
		IPLimit:    cfg.RateLimit.LoginIPLimit,
		EmailLimit: cfg.RateLimit.LoginEmailLimit,
	}
	loginLimit := middleware.LoginRateLimit(loginPolicy, nil, logg)
	idempotent := middleware.Idempotency(nil, middleware.DefaultIdempotencyTTL, logg)
	if deps.Redis != nil {
		loginLimit = middleware.LoginRateLimit(loginPolicy, deps.Redis, logg)
		idempotent = middleware.Idempotency(deps.Redis, middleware.DefaultIdempotencyTTL, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", authcontrollers.Login(deps.Auth, logg))
		r.Post("/refresh", authcontrollers.Refresh(deps.Auth, logg))
		r.Post("/logout", authcontrollers.Logout(deps.Auth, logg))
	})

	ownerOnly := middleware.RequireRole(logg, enums.MemberRoleOwner)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.MemberRoleOwner, enums.MemberRoleStaff))

		r.With(ownerOnly).Post("/users", authcontrollers.CreateUser(deps.Auth, logg))

		r.Route("/menu/items", func(r chi.Router) {
			r.Get("/", menucontrollers.List(deps.Menu, logg))
			r.Get("/{itemId}", menucontrollers.Get(deps.Menu, logg))
			r.With(ownerOnly).Post("/", menucontrollers.Create(deps.Menu, logg))
			r.With(ownerOnly).Put("/{itemId}", menucontrollers.Update(deps.Menu, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(idempotent).Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, businessLocation(deps), logg))
			r.Get("/{orderNumber}", ordercontrollers.Detail(deps.Orders, logg))
			r.Get("/{orderNumber}/profitability", ordercontrollers.Profitability(deps.Orders, logg))
			r.Put("/{orderNumber}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/period", reportcontrollers.Period(deps.Analytics, logg))
			r.Get("/daily", reportcontrollers.Daily(deps.Analytics, logg))
			r.Get("/weekly", reportcontrollers.Weekly(deps.Analytics, logg))
			r.Get("/monthly", reportcontrollers.Monthly(deps.Analytics, logg))
			r.With(ownerOnly).Get("/export", reportcontrollers.Export(deps.Analytics, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/channels", analyticscontrollers.Channels(deps.Analytics, logg))
			r.Get("/trends", analyticscontrollers.Trends(deps.Analytics, logg))
			r.With(ownerOnly).Get("/pricing", analyticscontrollers.Pricing(deps.Analytics, logg))
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", ratecontrollers.Get(deps.Rates, logg))
			r.With(ownerOnly).Put("/", ratecontrollers.Put(deps.Rates, deps.Publisher, logg))
		})
	})

	return r
}

func businessLocation(deps Dependencies) *time.Location {
	if deps.Analytics != nil {
		return deps.Analytics.Location()
	}
	if loc, err := deps.Config.Business.Location(); err == nil {
		return loc
	}
	return time.UTC
}
