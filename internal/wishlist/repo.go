package wishlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/internal/listings"
	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	"github.com/shopperssay/backend/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID int64, listingID uuid.UUID) error {
	if userID <= 0 || listingID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (id, user_id, listing_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, listing_id) DO NOTHING`,
			uuid.New(), userID, listingID, time.Now().UTC()).
		Error
}

// RemoveItem deletes the saved listing if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID int64, listingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.WishlistItem{}).
		Error
}

// ListItems returns a paginated wishlist. Entries whose listing or seller is
// gone are filtered in the join; deletes do not cascade.
func (r *Repository) ListItems(ctx context.Context, userID int64, cursor string, limit int) (WishlistItemsPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return WishlistItemsPageDTO{}, err
	}

	selectColumns := []string{
		"wi.id AS wishlist_id",
		"wi.created_at AS wishlist_created_at",
		"l.id AS listing_id",
		"l.seller_id",
		"l.title",
		"l.description",
		"l.price",
		"l.category",
		"l.location",
		"l.image_urls",
		"l.image_url",
		"l.imageurl",
		"l.status",
		"l.posted_at",
		"l.expires_at",
	}

	dataQuery := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN listings l ON l.id = wi.listing_id").
		Joins("JOIN users u ON u.id = l.seller_id").
		Where("wi.user_id = ?", userID)

	if decodedCursor != nil {
		dataQuery = dataQuery.Where("(wi.created_at < ?) OR (wi.created_at = ? AND wi.id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	dataQuery = dataQuery.Order("wi.created_at DESC").Order("wi.id DESC").Limit(limitWithBuffer)

	var records []wishlistListingRecord
	if err := dataQuery.Scan(&records).Error; err != nil {
		return WishlistItemsPageDTO{}, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.WishlistCreatedAt,
			ID:        last.WishlistID,
		})
	}

	items := make([]WishlistItemDTO, 0, len(resultRows))
	for _, record := range resultRows {
		items = append(items, record.toDTO())
	}

	total, err := r.countItems(ctx, userID)
	if err != nil {
		return WishlistItemsPageDTO{}, err
	}

	return WishlistItemsPageDTO{
		Items:      items,
		NextCursor: nextCursor,
		Total:      total,
	}, nil
}

// ListItemIDs returns every saved listing id whose listing still exists.
func (r *Repository) ListItemIDs(ctx context.Context, userID int64) (WishlistIDsDTO, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select("wi.listing_id").
		Joins("JOIN listings l ON l.id = wi.listing_id").
		Where("wi.user_id = ?", userID).
		Order("wi.created_at DESC").
		Scan(&ids).Error
	if err != nil {
		return WishlistIDsDTO{}, err
	}
	return WishlistIDsDTO{ListingIDs: ids}, nil
}

func (r *Repository) countItems(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Joins("JOIN listings l ON l.id = wi.listing_id").
		Joins("JOIN users u ON u.id = l.seller_id").
		Where("wi.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type wishlistListingRecord struct {
	WishlistID        uuid.UUID       `gorm:"column:wishlist_id"`
	WishlistCreatedAt time.Time       `gorm:"column:wishlist_created_at"`
	ListingID         uuid.UUID       `gorm:"column:listing_id"`
	SellerID          int64           `gorm:"column:seller_id"`
	Title             string          `gorm:"column:title"`
	Description       string          `gorm:"column:description"`
	Price             decimal.Decimal `gorm:"column:price"`
	Category          string          `gorm:"column:category"`
	Location          string          `gorm:"column:location"`
	ImageURLs         *string         `gorm:"column:image_urls"`
	ImageURL          *string         `gorm:"column:image_url"`
	ImageURLAlt       *string         `gorm:"column:imageurl"`
	Status            string          `gorm:"column:status"`
	PostedAt          time.Time       `gorm:"column:posted_at"`
	ExpiresAt         *time.Time      `gorm:"column:expires_at"`
}

func (r wishlistListingRecord) toDTO() WishlistItemDTO {
	listing := models.Listing{
		ID:          r.ListingID,
		SellerID:    r.SellerID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    enums.ListingCategory(r.Category),
		Location:    r.Location,
		ImageURLs:   r.ImageURLs,
		ImageURL:    r.ImageURL,
		ImageURLAlt: r.ImageURLAlt,
		Status:      enums.ListingStatus(r.Status),
		PostedAt:    r.PostedAt,
		ExpiresAt:   r.ExpiresAt,
	}

	return WishlistItemDTO{
		Listing: listings.ListingDTO{
			ID:          listing.ID,
			SellerID:    listing.SellerID,
			Title:       listing.Title,
			Description: listing.Description,
			Price:       listing.Price,
			Category:    r.Category,
			Location:    listing.Location,
			ImageURLs:   listings.ImageURLList(listing),
			Status:      listing.Status,
			PostedAt:    listing.PostedAt,
			ExpiresAt:   listing.ExpiresAt,
		},
		CreatedAt: r.WishlistCreatedAt,
	}
}
