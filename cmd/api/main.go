package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/jbaptiste/cardfolio-backend/api/routes"
	"github.com/jbaptiste/cardfolio-backend/internal/admin"
	"github.com/jbaptiste/cardfolio-backend/internal/auth"
	"github.com/jbaptiste/cardfolio-backend/internal/cards"
	"github.com/jbaptiste/cardfolio-backend/internal/dashboard"
	"github.com/jbaptiste/cardfolio-backend/internal/portfolio"
	"github.com/jbaptiste/cardfolio-backend/internal/users"
	"github.com/jbaptiste/cardfolio-backend/pkg/auth/session"
	"github.com/jbaptiste/cardfolio-backend/pkg/catalog"
	"github.com/jbaptiste/cardfolio-backend/pkg/config"
	"github.com/jbaptiste/cardfolio-backend/pkg/db"
	"github.com/jbaptiste/cardfolio-backend/pkg/logger"
	"github.com/jbaptiste/cardfolio-backend/pkg/metrics"
	"github.com/jbaptiste/cardfolio-backend/pkg/migrate"
	"github.com/jbaptiste/cardfolio-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

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
		closeErr := multierr.Append(dbClient.Close(), redisClient.Close())
		if closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	catalogClient, err := catalog.NewClient(cfg.Catalog, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog client", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	cardsService, err := cards.NewService(cards.ServiceParams{Catalog: catalogClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create cards service", err)
		os.Exit(1)
	}

	portfolioRepo := portfolio.NewRepository(dbClient.DB())
	portfolioService, err := portfolio.NewService(portfolio.ServiceParams{
		Repo: portfolioRepo,
		Tx:   dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create portfolio service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{Repo: portfolioRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(admin.ServiceParams{Repo: admin.NewRepository(dbClient.DB())})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			Session:          sessionManager,
			Metrics:          httpMetrics,
			Registry:         registry,
			AuthService:      authService,
			CardsService:     cardsService,
			PortfolioService: portfolioService,
			DashboardService: dashboardService,
			AdminService:     adminService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
