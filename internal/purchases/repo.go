package purchases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a purchases repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePaymentOrder(ctx context.Context, order *models.PaymentOrder) (*models.PaymentOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindPaymentOrderByToken(ctx context.Context, orderToken string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.WithContext(ctx).
		Where("order_token = ?", orderToken).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ConsumePaymentOrder flips created -> consumed. The conditional WHERE makes a
// replayed callback a no-op: the second caller sees zero rows.
func (r *repository) ConsumePaymentOrder(ctx context.Context, orderToken string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentOrder{}).
		Where("order_token = ? AND status = ?", orderToken, enums.PaymentOrderStatusCreated).
		Updates(map[string]any{
			"status":     enums.PaymentOrderStatusConsumed,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *repository) FindPurchaseByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) FindPurchaseByOrderToken(ctx context.Context, orderToken string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Where("order_token = ?", orderToken).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) ListPurchasesByBuyer(ctx context.Context, buyerID int64) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("purchase_date DESC").
		Order("id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// TransitionPurchaseStatus performs a guarded status move. Zero rows means the
// row was no longer in the expected state.
func (r *repository) TransitionPurchaseStatus(ctx context.Context, id int64, from, to enums.OrderStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["order_status"] = to
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkReviewSubmitted flips review_submitted false -> true. Zero rows means a
// review already landed.
func (r *repository) MarkReviewSubmitted(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ? AND review_submitted = ?", id, false).
		Updates(map[string]any{
			"review_submitted": true,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// MarkListingSold moves a purchasable listing to sold. Terminal states are
// left alone so a second buyer's callback cannot flip an already-sold row.
func (r *repository) MarkListingSold(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status IN ?", id, []enums.ListingStatus{enums.ListingStatusActive, enums.ListingStatusPendingPayment}).
		Updates(map[string]any{
			"status":     enums.ListingStatusSold,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// RefreshSellerRating recomputes the denormalized rating columns from the
// reviews table.
func (r *repository) RefreshSellerRating(ctx context.Context, sellerID int64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE users
		SET rating_average = COALESCE((SELECT AVG(rating) FROM reviews WHERE seller_id = ?), 0),
			rating_count = (SELECT COUNT(*) FROM reviews WHERE seller_id = ?),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sellerID, sellerID, sellerID).Error
}
