package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jbaptiste/cardfolio-backend/api/controllers"
	"github.com/jbaptiste/cardfolio-backend/api/middleware"
	"github.com/jbaptiste/cardfolio-backend/internal/admin"
	"github.com/jbaptiste/cardfolio-backend/internal/auth"
	"github.com/jbaptiste/cardfolio-backend/internal/cards"
	"github.com/jbaptiste/cardfolio-backend/internal/dashboard"
	"github.com/jbaptiste/cardfolio-backend/internal/portfolio"
	"github.com/jbaptiste/cardfolio-backend/pkg/auth/session"
	"github.com/jbaptiste/cardfolio-backend/pkg/config"
	"github.com/jbaptiste/cardfolio-backend/pkg/db"
	"github.com/jbaptiste/cardfolio-backend/pkg/logger"
	"github.com/jbaptiste/cardfolio-backend/pkg/metrics"
	"github.com/jbaptiste/cardfolio-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Session session.AccessSessionChecker

	Metrics  *metrics.HTTPMetrics
	Registry *prometheus.Registry

	AuthService      auth.Service
	CardsService     cards.Service
	PortfolioService portfolio.Service
	DashboardService dashboard.Service
	AdminService     admin.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Session, logg))

		r.Get("/me", controllers.AuthProfile(p.AuthService, logg))

		r.Route("/cards", func(r chi.Router) {
			r.Get("/search", controllers.CardsSearch(p.CardsService, logg))
			r.Get("/{cardId}", controllers.CardsGet(p.CardsService, logg))
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", controllers.PortfolioList(p.PortfolioService, logg))
			r.Post("/", controllers.PortfolioAdd(p.PortfolioService, logg))
			r.Delete("/", controllers.PortfolioClear(p.PortfolioService, logg))
			r.Post("/ownership", controllers.PortfolioOwnership(p.PortfolioService, logg))
			r.Get("/sets", controllers.PortfolioSets(p.PortfolioService, logg))
			r.Route("/{holdingId}", func(r chi.Router) {
				r.Get("/", controllers.PortfolioGet(p.PortfolioService, logg))
				r.Patch("/", controllers.PortfolioUpdate(p.PortfolioService, logg))
				r.Delete("/", controllers.PortfolioDelete(p.PortfolioService, logg))
				r.Delete("/variants/{index}", controllers.PortfolioDeleteVariant(p.PortfolioService, logg))
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", controllers.DashboardSummary(p.DashboardService, logg))
			r.Get("/timeseries", controllers.DashboardTimeSeries(p.DashboardService, logg))
			r.Get("/grades", controllers.DashboardGrades(p.DashboardService, logg))
			r.Get("/top-sets", controllers.DashboardTopSets(p.DashboardService, logg))
			r.Get("/recent", controllers.DashboardRecent(p.DashboardService, logg))
			r.Get("/most-expensive", controllers.DashboardMostExpensive(p.DashboardService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Session, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Get("/overview", controllers.AdminOverview(p.AdminService, logg))
		r.Post("/repair", controllers.AdminRepairHoldings(p.AdminService, logg))
	})

	return r
}
