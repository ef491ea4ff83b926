package controllers

import (
	"net/http"
	"strings"

	"github.com/shopperssay/backend/api/middleware"
	"github.com/shopperssay/backend/api/responses"
	"github.com/shopperssay/backend/api/validators"
	"github.com/shopperssay/backend/internal/overview"
	"github.com/shopperssay/backend/internal/users"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/pagination"
)

// AdminOverview returns the aggregate marketplace counts for the dashboard.
func AdminOverview(svc overview.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "overview service unavailable"))
			return
		}

		stats, err := svc.Stats(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminUserList pages through every account.
func AdminUserList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.List(ctx, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminUserDelete removes an account. Listings and purchases survive;
// readers filter the dangling references.
func AdminUserDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := pathInt64(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if userID == middleware.UserIDFromContext(ctx) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account"))
			return
		}

		if err := svc.Delete(ctx, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
