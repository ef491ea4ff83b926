package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/pagination"
)

// Repository defines the persistence surface for accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpdateFavoriteSellers(ctx context.Context, id int64, favorites []int64) error
	List(ctx context.Context, limit int, cursor *pagination.SeqCursor) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}
