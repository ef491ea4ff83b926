package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopperssay/backend/api/middleware"
	"github.com/shopperssay/backend/api/responses"
	"github.com/shopperssay/backend/api/validators"
	"github.com/shopperssay/backend/internal/listings"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/pagination"
)

type createListingPayload struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Location    string          `json:"location" validate:"max=200"`
	ImageURLs   []string        `json:"image_urls" validate:"omitempty,max=12,dive,url"`
}

type updateListingPayload struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Location    *string          `json:"location,omitempty" validate:"omitempty,max=200"`
	ImageURLs   []string         `json:"image_urls,omitempty" validate:"omitempty,max=12,dive,url"`
}

// ListingSearch serves the public catalog with query/category filters.
func ListingSearch(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Search(ctx, listings.SearchInput{
			Query:    strings.TrimSpace(r.URL.Query().Get("q")),
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListingDetail returns one listing by id.
func ListingDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		id, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// SellerListings returns a seller's listings for the public profile page.
func SellerListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		sellerID, err := pathInt64(r, "sellerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.ListBySeller(ctx, sellerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// ListingCreate posts a new listing for the authenticated seller.
func ListingCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		var payload createListingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Create(ctx, listings.CreateListingInput{
			SellerID:    userID,
			Title:       validators.SanitizeString(payload.Title, 200),
			Description: validators.SanitizeString(payload.Description, 5000),
			Price:       payload.Price,
			Category:    payload.Category,
			Location:    validators.SanitizeString(payload.Location, 200),
			ImageURLs:   payload.ImageURLs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// ListingUpdate applies partial edits; owner or admin only.
func ListingUpdate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		id, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateListingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Update(ctx, id, userID, middleware.IsAdminFromContext(ctx), listings.UpdateListingInput{
			Title:       validators.SanitizeStringPtr(payload.Title, 200),
			Description: validators.SanitizeStringPtr(payload.Description, 5000),
			Price:       payload.Price,
			Category:    payload.Category,
			Location:    validators.SanitizeStringPtr(payload.Location, 200),
			ImageURLs:   payload.ImageURLs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListingDelete removes a listing; owner or admin only.
func ListingDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		id, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id, userID, middleware.IsAdminFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
