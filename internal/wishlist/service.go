package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/internal/listings"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	ListingRepo  listings.Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID int64, cursor string, limit int) (WishlistItemsPageDTO, error)
	GetWishlistIDs(ctx context.Context, userID int64) (WishlistIDsDTO, error)
	AddItem(ctx context.Context, userID int64, listingID uuid.UUID) error
	RemoveItem(ctx context.Context, userID int64, listingID uuid.UUID) error
}

type service struct {
	wishlistRepo *Repository
	listingRepo  listings.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		listingRepo:  params.ListingRepo,
	}, nil
}

// GetWishlist returns the paginated wishlist for a user.
func (s *service) GetWishlist(ctx context.Context, userID int64, cursor string, limit int) (WishlistItemsPageDTO, error) {
	if userID <= 0 {
		return WishlistItemsPageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	page, err := s.wishlistRepo.ListItems(ctx, userID, cursor, limit)
	if err != nil {
		return WishlistItemsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return page, nil
}

// GetWishlistIDs returns all saved listing ids for the user.
func (s *service) GetWishlistIDs(ctx context.Context, userID int64) (WishlistIDsDTO, error) {
	if userID <= 0 {
		return WishlistIDsDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	ids, err := s.wishlistRepo.ListItemIDs(ctx, userID)
	if err != nil {
		return WishlistIDsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist ids")
	}
	return ids, nil
}

// AddItem ensures the listing exists and saves it.
func (s *service) AddItem(ctx context.Context, userID int64, listingID uuid.UUID) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if listingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if err := s.wishlistRepo.AddItem(ctx, userID, listingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist item")
	}
	return nil
}

// RemoveItem drops the wishlist entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID int64, listingID uuid.UUID) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if listingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	if err := s.wishlistRepo.RemoveItem(ctx, userID, listingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}
