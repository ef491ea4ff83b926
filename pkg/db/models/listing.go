package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopperssay/backend/pkg/enums"
)

// Listing represents an item a seller has put up for sale.
//
// Three image columns coexist for historical reasons: image_urls is the
// canonical column, image_url and imageurl are legacy synonyms still present
// in imported rows. Readers merge all three; writers touch only image_urls.
type Listing struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    int64                 `gorm:"column:seller_id;not null;index:listings_seller_id_idx"`
	Title       string                `gorm:"column:title;not null"`
	Description string                `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Category    enums.ListingCategory `gorm:"column:category;not null"`
	Location    string                `gorm:"column:location;not null;default:''"`
	ImageURLs   *string               `gorm:"column:image_urls"`
	ImageURL    *string               `gorm:"column:image_url"`
	ImageURLAlt *string               `gorm:"column:imageurl"`
	Status      enums.ListingStatus   `gorm:"column:status;not null;default:'active';index:listings_status_idx"`
	PostedAt    time.Time             `gorm:"column:posted_at;not null"`
	ExpiresAt   *time.Time            `gorm:"column:expires_at"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
