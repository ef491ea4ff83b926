package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shopperssay/backend/api"
	"github.com/shopperssay/backend/api/routes"
	"github.com/shopperssay/backend/internal/auth"
	"github.com/shopperssay/backend/internal/listings"
	"github.com/shopperssay/backend/internal/overview"
	"github.com/shopperssay/backend/internal/purchases"
	"github.com/shopperssay/backend/internal/reviews"
	"github.com/shopperssay/backend/internal/users"
	"github.com/shopperssay/backend/internal/wishlist"
	"github.com/shopperssay/backend/pkg/auth/session"
	"github.com/shopperssay/backend/pkg/config"
	"github.com/shopperssay/backend/pkg/db"
	"github.com/shopperssay/backend/pkg/gemini"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/metrics"
	"github.com/shopperssay/backend/pkg/migrate"
	"github.com/shopperssay/backend/pkg/razorpay"
	"github.com/shopperssay/backend/pkg/redis"
)

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	listingsRepo := listings.NewRepository(dbClient.DB())
	listingsService, err := listings.NewService(listingsRepo, cfg.Listings.ValidityWindow(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	purchasesParams := purchases.ServiceParams{
		Repo:     purchases.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Currency: cfg.Razorpay.Currency,
		Logger:   logg,
	}
	if cfg.Razorpay.Configured() {
		gateway, err := razorpay.NewClient(cfg.Razorpay)
		if err != nil {
			logg.Error(context.Background(), "failed to create payment gateway client", err)
			os.Exit(1)
		}
		purchasesParams.Gateway = gateway
	} else {
		logg.Warn(context.Background(), "payment gateway not configured, checkout disabled")
	}
	purchasesService, err := purchases.NewService(purchasesParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchases service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(dbClient.DB()),
		ListingRepo:  listingsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	overviewService, err := overview.NewService(overview.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create overview service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:  usersService,
		Session:   sessionManager,
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	var geminiClient *gemini.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient, err = gemini.NewClient(cfg.Gemini)
		if err != nil {
			logg.Error(context.Background(), "failed to create gemini client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gemini not configured, description assist serves fallback copy")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sessionManager,
		registry,
		httpMetrics,
		authService,
		usersService,
		listingsService,
		purchasesService,
		reviewsService,
		wishlistService,
		overviewService,
		geminiClient,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, router)
	if err := api.Serve(ctx, cfg, logg, server); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
