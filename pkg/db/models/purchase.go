package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopperssay/backend/pkg/enums"
)

// Purchase is the buyer's record of a completed checkout. Listing and seller
// details are copied in at confirmation time so the row stays readable after
// the listing or the seller account is deleted.
type Purchase struct {
	ID                 int64             `gorm:"column:id;primaryKey;autoIncrement"`
	BuyerID            int64             `gorm:"column:buyer_id;not null;index:purchases_buyer_id_idx"`
	ListingID          *uuid.UUID        `gorm:"column:listing_id;type:uuid"`
	OrderToken         string            `gorm:"column:order_token;not null"`
	ListingTitle       string            `gorm:"column:listing_title;not null"`
	ListingPrice       decimal.Decimal   `gorm:"column:listing_price;type:numeric(12,2);not null"`
	ListingCategory    string            `gorm:"column:listing_category;not null;default:''"`
	ListingLocation    string            `gorm:"column:listing_location;not null;default:''"`
	ListingImageURL    string            `gorm:"column:listing_image_url;not null;default:''"`
	SellerID           int64             `gorm:"column:seller_id;not null;index:purchases_seller_id_idx"`
	SellerName         string            `gorm:"column:seller_name;not null;default:''"`
	OrderStatus        enums.OrderStatus `gorm:"column:order_status;not null;default:'processing'"`
	ReviewSubmitted    bool              `gorm:"column:review_submitted;not null;default:false"`
	PurchaseDate       time.Time         `gorm:"column:purchase_date;not null"`
	ArrivalDate        *time.Time        `gorm:"column:arrival_date"`
	CancellationReason *string           `gorm:"column:cancellation_reason"`
	ReturnReason       *string           `gorm:"column:return_reason"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
