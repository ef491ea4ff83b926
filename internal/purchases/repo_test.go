package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
)

func setupPurchasesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL UNIQUE,
  avatar_url TEXT NOT NULL DEFAULT '',
  account_type TEXT NOT NULL DEFAULT 'user',
  phone TEXT,
  address TEXT,
  rating_average REAL NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  favorite_sellers TEXT,
  is_admin INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	listings := `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  seller_id INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  category TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  image_urls TEXT,
  image_url TEXT,
  imageurl TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  posted_at DATETIME NOT NULL,
  expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	paymentOrders := `
CREATE TABLE IF NOT EXISTS payment_orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_token TEXT NOT NULL UNIQUE,
  listing_id TEXT NOT NULL,
  buyer_id INTEGER NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  shipping_phone TEXT,
  shipping_address TEXT,
  status TEXT NOT NULL DEFAULT 'created',
  created_at DATETIME,
  updated_at DATETIME
);`
	purchases := `
CREATE TABLE IF NOT EXISTS purchases (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  buyer_id INTEGER NOT NULL,
  listing_id TEXT,
  order_token TEXT NOT NULL,
  listing_title TEXT NOT NULL,
  listing_price NUMERIC NOT NULL,
  listing_category TEXT NOT NULL DEFAULT '',
  listing_location TEXT NOT NULL DEFAULT '',
  listing_image_url TEXT NOT NULL DEFAULT '',
  seller_id INTEGER NOT NULL,
  seller_name TEXT NOT NULL DEFAULT '',
  order_status TEXT NOT NULL DEFAULT 'processing',
  review_submitted INTEGER NOT NULL DEFAULT 0,
  purchase_date DATETIME NOT NULL,
  arrival_date DATETIME,
  cancellation_reason TEXT,
  return_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	reviews := `
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  purchase_id INTEGER NOT NULL UNIQUE,
  seller_id INTEGER NOT NULL,
  reviewer_id INTEGER NOT NULL,
  reviewer_name TEXT NOT NULL DEFAULT '',
  rating INTEGER NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  listing_title TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(listings).Error)
	require.NoError(t, db.Exec(paymentOrders).Error)
	require.NoError(t, db.Exec(purchases).Error)
	require.NoError(t, db.Exec(reviews).Error)
	for _, table := range []string{"users", "listings", "payment_orders", "purchases", "reviews"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

func newSeller(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:       email,
		Name:        "Seller",
		AccountType: enums.AccountTypeUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newListing(t *testing.T, db *gorm.DB, sellerID int64, status enums.ListingStatus) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		ID:       uuid.New(),
		SellerID: sellerID,
		Title:    "Road bike",
		Price:    decimal.NewFromInt(12000),
		Category: enums.ListingCategoryBikes,
		Location: "Chennai",
		Status:   status,
		PostedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func newPurchase(t *testing.T, db *gorm.DB, buyerID, sellerID int64, status enums.OrderStatus) *models.Purchase {
	t.Helper()

	purchase := &models.Purchase{
		BuyerID:      buyerID,
		OrderToken:   "order_" + uuid.NewString(),
		ListingTitle: "Road bike",
		ListingPrice: decimal.NewFromInt(12000),
		SellerID:     sellerID,
		OrderStatus:  status,
		PurchaseDate: time.Now().UTC(),
	}
	require.NoError(t, db.Create(purchase).Error)
	return purchase
}

func TestConsumePaymentOrderOnce(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := newSeller(t, db, "seller@example.com")
	listing := newListing(t, db, seller.ID, enums.ListingStatusActive)

	_, err := repo.CreatePaymentOrder(ctx, &models.PaymentOrder{
		OrderToken: "order_abc",
		ListingID:  listing.ID,
		BuyerID:    2,
		Amount:     listing.Price,
		Currency:   "INR",
		Status:     enums.PaymentOrderStatusCreated,
	})
	require.NoError(t, err)

	consumed, err := repo.ConsumePaymentOrder(ctx, "order_abc")
	require.NoError(t, err)
	assert.True(t, consumed)

	again, err := repo.ConsumePaymentOrder(ctx, "order_abc")
	require.NoError(t, err)
	assert.False(t, again, "second consume must see zero rows")

	order, err := repo.FindPaymentOrderByToken(ctx, "order_abc")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentOrderStatusConsumed, order.Status)
}

func TestMarkListingSoldGuards(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := newSeller(t, db, "seller@example.com")
	active := newListing(t, db, seller.ID, enums.ListingStatusActive)
	pending := newListing(t, db, seller.ID, enums.ListingStatusPendingPayment)
	expired := newListing(t, db, seller.ID, enums.ListingStatusExpired)

	sold, err := repo.MarkListingSold(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, sold)

	sold, err = repo.MarkListingSold(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, sold)

	sold, err = repo.MarkListingSold(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, sold, "expired listings must not become sold")

	sold, err = repo.MarkListingSold(ctx, active.ID)
	require.NoError(t, err)
	assert.False(t, sold, "already sold listings must not be updated again")
}

func TestTransitionPurchaseStatus(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	purchase := newPurchase(t, db, 2, 1, enums.OrderStatusProcessing)

	ok, err := repo.TransitionPurchaseStatus(ctx, purchase.ID, enums.OrderStatusProcessing, enums.OrderStatusShipped, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionPurchaseStatus(ctx, purchase.ID, enums.OrderStatusProcessing, enums.OrderStatusCancelled, nil)
	require.NoError(t, err)
	assert.False(t, ok, "stale transition must see zero rows")

	found, err := repo.FindPurchaseByID(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.OrderStatus)
}

func TestTransitionPurchaseStatusWithUpdates(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	purchase := newPurchase(t, db, 2, 1, enums.OrderStatusDelivered)

	ok, err := repo.TransitionPurchaseStatus(ctx, purchase.ID, enums.OrderStatusDelivered, enums.OrderStatusReturned, map[string]any{
		"return_reason": "wrong size",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindPurchaseByID(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusReturned, found.OrderStatus)
	require.NotNil(t, found.ReturnReason)
	assert.Equal(t, "wrong size", *found.ReturnReason)
}

func TestMarkReviewSubmittedOnce(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	purchase := newPurchase(t, db, 2, 1, enums.OrderStatusDelivered)

	ok, err := repo.MarkReviewSubmitted(ctx, purchase.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkReviewSubmitted(ctx, purchase.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReviewUniquePerPurchase(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	purchase := newPurchase(t, db, 2, 1, enums.OrderStatusDelivered)

	_, err := repo.CreateReview(ctx, &models.Review{
		ID:         uuid.New(),
		PurchaseID: purchase.ID,
		SellerID:   1,
		ReviewerID: 2,
		Rating:     5,
	})
	require.NoError(t, err)

	_, err = repo.CreateReview(ctx, &models.Review{
		ID:         uuid.New(),
		PurchaseID: purchase.ID,
		SellerID:   1,
		ReviewerID: 2,
		Rating:     3,
	})
	assert.Error(t, err, "duplicate review for the same purchase must be rejected")
}

func TestRefreshSellerRating(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := newSeller(t, db, "seller@example.com")

	first := newPurchase(t, db, 2, seller.ID, enums.OrderStatusDelivered)
	second := newPurchase(t, db, 3, seller.ID, enums.OrderStatusDelivered)

	_, err := repo.CreateReview(ctx, &models.Review{ID: uuid.New(), PurchaseID: first.ID, SellerID: seller.ID, ReviewerID: 2, Rating: 5})
	require.NoError(t, err)
	_, err = repo.CreateReview(ctx, &models.Review{ID: uuid.New(), PurchaseID: second.ID, SellerID: seller.ID, ReviewerID: 3, Rating: 3})
	require.NoError(t, err)

	require.NoError(t, repo.RefreshSellerRating(ctx, seller.ID))

	found, err := repo.FindUserByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, found.RatingAverage, 0.001)
	assert.Equal(t, 2, found.RatingCount)
}

func TestListPurchasesByBuyerOrdering(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	older := &models.Purchase{
		BuyerID:      2,
		OrderToken:   "order_old",
		ListingTitle: "Old",
		ListingPrice: decimal.NewFromInt(100),
		SellerID:     1,
		OrderStatus:  enums.OrderStatusDelivered,
		PurchaseDate: time.Now().Add(-48 * time.Hour).UTC(),
	}
	newer := &models.Purchase{
		BuyerID:      2,
		OrderToken:   "order_new",
		ListingTitle: "New",
		ListingPrice: decimal.NewFromInt(200),
		SellerID:     1,
		OrderStatus:  enums.OrderStatusProcessing,
		PurchaseDate: time.Now().UTC(),
	}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Create(newer).Error)
	require.NoError(t, db.Create(&models.Purchase{
		BuyerID:      9,
		OrderToken:   "order_other",
		ListingTitle: "Other",
		ListingPrice: decimal.NewFromInt(300),
		SellerID:     1,
		OrderStatus:  enums.OrderStatusProcessing,
		PurchaseDate: time.Now().UTC(),
	}).Error)

	rows, err := repo.ListPurchasesByBuyer(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "New", rows[0].ListingTitle)
	assert.Equal(t, "Old", rows[1].ListingTitle)
}
