package purchases

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
)

// Repository defines the persistence surface for the purchase lifecycle.
// Listing and user reads live here too: confirmation snapshots both inside
// the same transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePaymentOrder(ctx context.Context, order *models.PaymentOrder) (*models.PaymentOrder, error)
	FindPaymentOrderByToken(ctx context.Context, orderToken string) (*models.PaymentOrder, error)
	ConsumePaymentOrder(ctx context.Context, orderToken string) (bool, error)

	CreatePurchase(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error)
	FindPurchaseByID(ctx context.Context, id int64) (*models.Purchase, error)
	FindPurchaseByOrderToken(ctx context.Context, orderToken string) (*models.Purchase, error)
	ListPurchasesByBuyer(ctx context.Context, buyerID int64) ([]models.Purchase, error)
	TransitionPurchaseStatus(ctx context.Context, id int64, from, to enums.OrderStatus, updates map[string]any) (bool, error)
	MarkReviewSubmitted(ctx context.Context, id int64) (bool, error)

	FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	MarkListingSold(ctx context.Context, id uuid.UUID) (bool, error)

	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	RefreshSellerRating(ctx context.Context, sellerID int64) error
}
