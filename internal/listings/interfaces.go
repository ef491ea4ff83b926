package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/pagination"
)

// SearchFilters narrows catalog queries at the repository level.
type SearchFilters struct {
	Query    string
	Category string
}

// Repository defines the persistence surface for the catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Search(ctx context.Context, filters SearchFilters, limit int, cursor *pagination.Cursor) ([]models.Listing, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	SellerExists(ctx context.Context, sellerID int64) (bool, error)
	ExpireActiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
