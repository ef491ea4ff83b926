package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	"github.com/shopperssay/backend/pkg/pagination"
)

// CreateListingInput carries a seller's new listing.
type CreateListingInput struct {
	SellerID    int64
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Location    string
	ImageURLs   []string
}

// UpdateListingInput carries partial edits; nil fields are untouched.
type UpdateListingInput struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Location    *string
	ImageURLs   []string
}

// SearchInput filters the public catalog.
type SearchInput struct {
	Query    string
	Category string
	Page     pagination.Params
}

// ListingDTO is the catalog projection of a listing row. Images are the
// merged, coerced view of the three storage columns.
type ListingDTO struct {
	ID          uuid.UUID           `json:"id"`
	SellerID    int64               `json:"seller_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Category    string              `json:"category"`
	Location    string              `json:"location"`
	ImageURLs   []string            `json:"image_urls"`
	Status      enums.ListingStatus `json:"status"`
	PostedAt    time.Time           `json:"posted_at"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}

// ListingList is one page of catalog results.
type ListingList struct {
	Items      []ListingDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toListingDTO(listing models.Listing) ListingDTO {
	return ListingDTO{
		ID:          listing.ID,
		SellerID:    listing.SellerID,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Category:    listing.Category.String(),
		Location:    listing.Location,
		ImageURLs:   ImageURLList(listing),
		Status:      listing.Status,
		PostedAt:    listing.PostedAt,
		ExpiresAt:   listing.ExpiresAt,
	}
}
