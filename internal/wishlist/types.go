package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopperssay/backend/internal/listings"
)

// WishlistItemDTO wraps the listing included in a wishlist row.
type WishlistItemDTO struct {
	Listing   listings.ListingDTO `json:"listing"`
	CreatedAt time.Time           `json:"created_at"`
}

// WishlistItemsPageDTO returns a cursor-paginated wishlist view.
type WishlistItemsPageDTO struct {
	Items      []WishlistItemDTO `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
	Total      int64             `json:"total"`
}

// WishlistIDsDTO is a lightweight projection containing only listing ids.
type WishlistIDsDTO struct {
	ListingIDs []uuid.UUID `json:"listing_ids"`
}
