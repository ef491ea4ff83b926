package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopperssay/backend/api/controllers"
	"github.com/shopperssay/backend/api/middleware"
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
	"github.com/shopperssay/backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.Checker,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	usersService users.Service,
	listingsService listings.Service,
	purchasesService purchases.Service,
	reviewsService reviews.Service,
	wishlistService wishlist.Service,
	overviewService overview.Service,
	geminiClient *gemini.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(middleware.Metrics(httpMetrics))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	assistHandler := controllers.AssistDescription(nil, logg)
	if geminiClient != nil {
		assistHandler = controllers.AssistDescription(geminiClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Get("/", controllers.ListingSearch(listingsService, logg))
		r.Get("/{listingId}", controllers.ListingDetail(listingsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/", controllers.ListingCreate(listingsService, logg))
			r.Patch("/{listingId}", controllers.ListingUpdate(listingsService, logg))
			r.Delete("/{listingId}", controllers.ListingDelete(listingsService, logg))
		})
	})

	r.Route("/api/v1/sellers/{sellerId}", func(r chi.Router) {
		r.Get("/listings", controllers.SellerListings(listingsService, logg))
		r.Get("/reviews", controllers.SellerReviews(reviewsService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.UserProfile(usersService, logg))
			r.Put("/", controllers.UserProfileUpdate(usersService, logg))
			r.Post("/favorites/{sellerId}", controllers.UserFavoriteToggle(usersService, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.PurchaseList(purchasesService, logg))
			r.Post("/initiate", controllers.PurchaseInitiate(purchasesService, logg))
			r.Post("/confirm", controllers.PurchaseConfirm(purchasesService, logg))
			r.Get("/{purchaseId}", controllers.PurchaseDetail(purchasesService, logg))
			r.Post("/{purchaseId}/return", controllers.PurchaseReturn(purchasesService, logg))
			r.Post("/{purchaseId}/cancel", controllers.PurchaseCancel(purchasesService, logg))
			r.Post("/{purchaseId}/review", controllers.PurchaseReview(purchasesService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(wishlistService, logg))
			r.Get("/ids", controllers.WishlistIDs(wishlistService, logg))
			r.Post("/", controllers.WishlistAddItem(wishlistService, logg))
			r.Delete("/{listingId}", controllers.WishlistRemoveItem(wishlistService, logg))
		})

		r.Post("/assist/description", assistHandler)
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/overview", controllers.AdminOverview(overviewService, logg))
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUserList(usersService, logg))
			r.Delete("/{userId}", controllers.AdminUserDelete(usersService, logg))
		})
		r.Route("/purchases/{purchaseId}", func(r chi.Router) {
			r.Post("/ship", controllers.AdminPurchaseShip(purchasesService, logg))
			r.Post("/deliver", controllers.AdminPurchaseDeliver(purchasesService, logg))
		})
	})

	return r
}
