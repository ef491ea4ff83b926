package overview

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
)

// Stats is the admin dashboard aggregate. A count of -1 means that fetch
// failed; the rest of the dashboard still renders.
type Stats struct {
	Users          int64 `json:"users"`
	ActiveListings int64 `json:"active_listings"`
	SoldListings   int64 `json:"sold_listings"`
	Purchases      int64 `json:"purchases"`
	OpenPurchases  int64 `json:"open_purchases"`
	Reviews        int64 `json:"reviews"`
	WishlistItems  int64 `json:"wishlist_items"`
}

// Repository defines the count queries feeding the dashboard.
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountListingsByStatus(ctx context.Context, status enums.ListingStatus) (int64, error)
	CountPurchases(ctx context.Context) (int64, error)
	CountPurchasesByStatus(ctx context.Context, status enums.OrderStatus) (int64, error)
	CountReviews(ctx context.Context) (int64, error)
	CountWishlistItems(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an overview repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.Model(&models.User{}))
}

func (r *repository) CountListingsByStatus(ctx context.Context, status enums.ListingStatus) (int64, error) {
	return r.count(ctx, r.db.Model(&models.Listing{}).Where("status = ?", status))
}

func (r *repository) CountPurchases(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.Model(&models.Purchase{}))
}

func (r *repository) CountPurchasesByStatus(ctx context.Context, status enums.OrderStatus) (int64, error) {
	return r.count(ctx, r.db.Model(&models.Purchase{}).Where("order_status = ?", status))
}

func (r *repository) CountReviews(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.Model(&models.Review{}))
}

func (r *repository) CountWishlistItems(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.Model(&models.WishlistItem{}))
}

func (r *repository) count(ctx context.Context, query *gorm.DB) (int64, error) {
	var count int64
	if err := query.WithContext(ctx).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Service aggregates the dashboard stats.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the overview service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("overview repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Stats fans the count queries out concurrently. Individual failures are
// collected, logged, and reported as -1 in the result; only a full wipeout
// returns an error.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	fetches := []struct {
		name   string
		target *int64
		fetch  func(ctx context.Context) (int64, error)
	}{
		{"users", &stats.Users, s.repo.CountUsers},
		{"active_listings", &stats.ActiveListings, func(ctx context.Context) (int64, error) {
			return s.repo.CountListingsByStatus(ctx, enums.ListingStatusActive)
		}},
		{"sold_listings", &stats.SoldListings, func(ctx context.Context) (int64, error) {
			return s.repo.CountListingsByStatus(ctx, enums.ListingStatusSold)
		}},
		{"purchases", &stats.Purchases, s.repo.CountPurchases},
		{"open_purchases", &stats.OpenPurchases, func(ctx context.Context) (int64, error) {
			return s.repo.CountPurchasesByStatus(ctx, enums.OrderStatusProcessing)
		}},
		{"reviews", &stats.Reviews, s.repo.CountReviews},
		{"wishlist_items", &stats.WishlistItems, s.repo.CountWishlistItems},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		combined error
		failures int
	)
	for _, f := range fetches {
		wg.Add(1)
		go func(name string, target *int64, fetch func(ctx context.Context) (int64, error)) {
			defer wg.Done()
			count, err := fetch(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				*target = -1
				failures++
				combined = multierr.Append(combined, fmt.Errorf("%s: %w", name, err))
				return
			}
			*target = count
		}(f.name, f.target, f.fetch)
	}
	wg.Wait()

	if failures == len(fetches) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "overview aggregation failed")
	}
	if combined != nil {
		s.logg.Error(ctx, "overview aggregation partially failed", combined)
	}
	return stats, nil
}
