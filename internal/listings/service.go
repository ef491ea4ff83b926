package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/pagination"
)

// Service exposes the catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateListingInput) (*ListingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	Search(ctx context.Context, input SearchInput) (*ListingList, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]ListingDTO, error)
	Update(ctx context.Context, id uuid.UUID, actorID int64, actorIsAdmin bool, input UpdateListingInput) (*ListingDTO, error)
	Delete(ctx context.Context, id uuid.UUID, actorID int64, actorIsAdmin bool) error
	ExpireListings(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	repo           Repository
	validityWindow time.Duration
	logg           *logger.Logger
}

// NewService builds the catalog service. validityWindow controls how far past
// posting a listing stays active.
func NewService(repo Repository, validityWindow time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if validityWindow <= 0 {
		validityWindow = 30 * 24 * time.Hour
	}
	return &service{
		repo:           repo,
		validityWindow: validityWindow,
		logg:           logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateListingInput) (*ListingDTO, error) {
	if input.SellerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	category, err := enums.ParseListingCategory(strings.TrimSpace(input.Category))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category").
			WithDetails(map[string]any{"category": input.Category})
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.validityWindow)
	listing := &models.Listing{
		SellerID:    input.SellerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    category,
		Location:    strings.TrimSpace(input.Location),
		ImageURLs:   EncodeImageURLs(input.ImageURLs),
		Status:      enums.ListingStatusActive,
		PostedAt:    now,
		ExpiresAt:   &expiresAt,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}

	ctx = s.logg.WithListingID(ctx, created.ID.String())
	s.logg.Info(ctx, "listing created")

	dto := toListingDTO(*created)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	listing, err := s.findListing(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.SellerExists(ctx, listing.SellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check seller")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}

	dto := toListingDTO(*listing)
	return &dto, nil
}

func (s *service) Search(ctx context.Context, input SearchInput) (*ListingList, error) {
	if c := strings.TrimSpace(input.Category); c != "" {
		if _, err := enums.ParseListingCategory(c); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category").
				WithDetails(map[string]any{"category": input.Category})
		}
	}

	cursor, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Page.Limit)

	rows, err := s.repo.Search(ctx, SearchFilters{
		Query:    input.Query,
		Category: strings.TrimSpace(input.Category),
	}, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search listings")
	}

	list := &ListingList{Items: make([]ListingDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.PostedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Items = append(list.Items, toListingDTO(row))
	}
	return list, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID int64) ([]ListingDTO, error) {
	if sellerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	out := make([]ListingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toListingDTO(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, actorID int64, actorIsAdmin bool, input UpdateListingInput) (*ListingDTO, error) {
	listing, err := s.findListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actorID && !actorIsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to actor")
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.Category != nil {
		category, err := enums.ParseListingCategory(strings.TrimSpace(*input.Category))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category").
				WithDetails(map[string]any{"category": *input.Category})
		}
		updates["category"] = category
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.ImageURLs != nil {
		updates["image_urls"] = EncodeImageURLs(input.ImageURLs)
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
		}
	}

	updated, err := s.findListing(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toListingDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actorID int64, actorIsAdmin bool) error {
	listing, err := s.findListing(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != actorID && !actorIsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to actor")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}

	ctx = s.logg.WithListingID(ctx, id.String())
	s.logg.Info(ctx, "listing deleted")
	return nil
}

// ExpireListings moves overdue active listings to expired. Called by the cron
// worker; safe to run concurrently, late runners just see zero rows.
func (s *service) ExpireListings(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.ExpireActiveBefore(ctx, now.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire listings")
	}
	if count > 0 {
		s.logg.Info(s.logg.WithField(ctx, "expired_count", count), "listings expired")
	}
	return count, nil
}

func (s *service) findListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}
