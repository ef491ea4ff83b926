package listings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	"github.com/shopperssay/backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Search returns active listings newest first. Rows whose seller is gone are
// filtered in the query; deletes do not cascade so readers defend themselves.
func (r *repository) Search(ctx context.Context, filters SearchFilters, limit int, cursor *pagination.Cursor) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("status = ?", enums.ListingStatusActive).
		Where("seller_id IN (SELECT id FROM users)")

	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if c := strings.TrimSpace(filters.Category); c != "" {
		query = query.Where("category = ?", c)
	}
	if cursor != nil {
		query = query.Where("(posted_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Listing
	err := query.
		Order("posted_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("posted_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Listing{}).Error
}

func (r *repository) SellerExists(ctx context.Context, sellerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", sellerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExpireActiveBefore flips active listings past their expiry to expired and
// reports how many rows moved.
func (r *repository) ExpireActiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", enums.ListingStatusActive, cutoff).
		Updates(map[string]any{
			"status":     enums.ListingStatusExpired,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
