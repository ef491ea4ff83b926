package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shopperssay/backend/internal/auth"
	"github.com/shopperssay/backend/internal/listings"
	"github.com/shopperssay/backend/internal/overview"
	"github.com/shopperssay/backend/internal/purchases"
	"github.com/shopperssay/backend/internal/reviews"
	"github.com/shopperssay/backend/internal/users"
	"github.com/shopperssay/backend/internal/wishlist"
	pkgAuth "github.com/shopperssay/backend/pkg/auth"
	"github.com/shopperssay/backend/pkg/auth/session"
	"github.com/shopperssay/backend/pkg/config"
	"github.com/shopperssay/backend/pkg/enums"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/pagination"
	"github.com/shopperssay/backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, sessionID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "token", User: &users.UserDTO{ID: 1, Email: req.Email}}, nil
}

func (stubAuthService) Logout(ctx context.Context, sessionID string) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) LoginOrCreate(ctx context.Context, email string) (*users.UserDTO, bool, error) {
	return nil, false, fmt.Errorf("not implemented")
}

func (stubUsersService) Get(ctx context.Context, id int64) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id, Email: "someone@example.com"}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, id int64, input users.UpdateProfileInput) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id}, nil
}

func (stubUsersService) ToggleFavoriteSeller(ctx context.Context, userID, sellerID int64) (*users.FavoriteToggleResult, error) {
	return &users.FavoriteToggleResult{}, nil
}

func (stubUsersService) List(ctx context.Context, page pagination.Params) (*users.UserList, error) {
	return &users.UserList{}, nil
}

func (stubUsersService) Delete(ctx context.Context, id int64) error {
	return nil
}

type stubListingsService struct{}

func (stubListingsService) Create(ctx context.Context, input listings.CreateListingInput) (*listings.ListingDTO, error) {
	return &listings.ListingDTO{}, nil
}

func (stubListingsService) Get(ctx context.Context, id uuid.UUID) (*listings.ListingDTO, error) {
	return &listings.ListingDTO{ID: id}, nil
}

func (stubListingsService) Search(ctx context.Context, input listings.SearchInput) (*listings.ListingList, error) {
	return &listings.ListingList{}, nil
}

func (stubListingsService) ListBySeller(ctx context.Context, sellerID int64) ([]listings.ListingDTO, error) {
	return nil, nil
}

func (stubListingsService) Update(ctx context.Context, id uuid.UUID, actorID int64, actorIsAdmin bool, input listings.UpdateListingInput) (*listings.ListingDTO, error) {
	return &listings.ListingDTO{ID: id}, nil
}

func (stubListingsService) Delete(ctx context.Context, id uuid.UUID, actorID int64, actorIsAdmin bool) error {
	return nil
}

func (stubListingsService) ExpireListings(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type stubPurchasesService struct{}

func (stubPurchasesService) InitiatePurchase(ctx context.Context, input purchases.InitiatePurchaseInput) (*purchases.CheckoutSessionDTO, error) {
	return &purchases.CheckoutSessionDTO{}, nil
}

func (stubPurchasesService) ConfirmPurchase(ctx context.Context, input purchases.ConfirmPurchaseInput) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{}, nil
}

func (stubPurchasesService) RequestReturn(ctx context.Context, input purchases.ReturnInput) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{}, nil
}

func (stubPurchasesService) RequestCancellation(ctx context.Context, input purchases.CancellationInput) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{}, nil
}

func (stubPurchasesService) SubmitReview(ctx context.Context, input purchases.ReviewInput) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{}, nil
}

func (stubPurchasesService) MarkShipped(ctx context.Context, purchaseID int64, arrivalDate *time.Time) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{ID: purchaseID}, nil
}

func (stubPurchasesService) MarkDelivered(ctx context.Context, purchaseID int64) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{ID: purchaseID}, nil
}

func (stubPurchasesService) GetPurchase(ctx context.Context, purchaseID, buyerID int64) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{ID: purchaseID}, nil
}

func (stubPurchasesService) ListForBuyer(ctx context.Context, buyerID int64) ([]purchases.PurchaseDTO, error) {
	return nil, nil
}

type stubReviewsService struct{}

func (stubReviewsService) ListBySeller(ctx context.Context, sellerID int64, page pagination.Params) (*reviews.ReviewList, error) {
	return &reviews.ReviewList{}, nil
}

type stubWishlistService struct{}

func (stubWishlistService) GetWishlist(ctx context.Context, userID int64, cursor string, limit int) (wishlist.WishlistItemsPageDTO, error) {
	return wishlist.WishlistItemsPageDTO{}, nil
}

func (stubWishlistService) GetWishlistIDs(ctx context.Context, userID int64) (wishlist.WishlistIDsDTO, error) {
	return wishlist.WishlistIDsDTO{}, nil
}

func (stubWishlistService) AddItem(ctx context.Context, userID int64, listingID uuid.UUID) error {
	return nil
}

func (stubWishlistService) RemoveItem(ctx context.Context, userID int64, listingID uuid.UUID) error {
	return nil
}

type stubOverviewService struct{}

func (stubOverviewService) Stats(ctx context.Context) (*overview.Stats, error) {
	return &overview.Stats{Users: 3}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		nil,
		nil,
		stubAuthService{},
		stubUsersService{},
		stubListingsService{},
		stubPurchasesService{},
		stubReviewsService{},
		stubWishlistService{},
		stubOverviewService{},
		nil,
	)
}

func buildToken(t *testing.T, cfg *config.Config, userID int64, isAdmin bool) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:      userID,
		Email:       "someone@example.com",
		AccountType: enums.AccountTypeUser,
		IsAdmin:     isAdmin,
		JTI:         session.NewSessionID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestListingSearchIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings?q=guitar", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public search got %d", resp.Code)
	}
}

func TestSellerReviewsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sellers/5/reviews", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for seller reviews got %d", resp.Code)
	}
}

func TestLoginIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"someone@example.com"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestProfileRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProfileSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, 7, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPurchaseHistoryRequiresJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminFlag(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/overview", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, 7, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/overview", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, 7, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAssistDescriptionFallsBackWithoutModel(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assist/description", strings.NewReader(`{"title":"Road bike"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, 7, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for assist fallback got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "description") {
		t.Fatalf("expected description payload got %s", resp.Body.String())
	}
}
