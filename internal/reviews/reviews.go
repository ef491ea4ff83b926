package reviews

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/pagination"
)

// ReviewDTO is the public projection of a review row. Reviewer name and
// listing title are the snapshots taken at submission time.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	SellerID     int64     `json:"seller_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Body         string    `json:"body"`
	ListingTitle string    `json:"listing_title"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewList is one page of a seller's reviews.
type ReviewList struct {
	Items      []ReviewDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// Repository defines the read surface for reviews. Writes happen inside the
// purchase lifecycle; this package only lists.
type Repository interface {
	ListBySeller(ctx context.Context, sellerID int64, limit int, cursor *pagination.Cursor) ([]models.Review, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListBySeller(ctx context.Context, sellerID int64, limit int, cursor *pagination.Cursor) ([]models.Review, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("seller_id = ?", sellerID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Review
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Service lists a seller's reviews.
type Service interface {
	ListBySeller(ctx context.Context, sellerID int64, page pagination.Params) (*ReviewList, error)
}

type service struct {
	repo Repository
}

// NewService builds the reviews service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID int64, page pagination.Params) (*ReviewList, error) {
	if sellerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.ListBySeller(ctx, sellerID, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	list := &ReviewList{Items: make([]ReviewDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Items = append(list.Items, ReviewDTO{
			ID:           row.ID,
			SellerID:     row.SellerID,
			ReviewerName: row.ReviewerName,
			Rating:       row.Rating,
			Body:         row.Body,
			ListingTitle: row.ListingTitle,
			CreatedAt:    row.CreatedAt,
		})
	}
	return list, nil
}
