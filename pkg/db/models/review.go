package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a buyer's one-time rating of a purchase. The unique index on
// purchase_id closes the submit race regardless of what callers check first.
type Review struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID   int64     `gorm:"column:purchase_id;not null;uniqueIndex:reviews_purchase_id_key"`
	SellerID     int64     `gorm:"column:seller_id;not null;index:reviews_seller_id_idx"`
	ReviewerID   int64     `gorm:"column:reviewer_id;not null"`
	ReviewerName string    `gorm:"column:reviewer_name;not null;default:''"`
	Rating       int       `gorm:"column:rating;not null"`
	Body         string    `gorm:"column:body;not null;default:''"`
	ListingTitle string    `gorm:"column:listing_title;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
