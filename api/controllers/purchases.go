package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shopperssay/backend/api/middleware"
	"github.com/shopperssay/backend/api/responses"
	"github.com/shopperssay/backend/api/validators"
	"github.com/shopperssay/backend/internal/purchases"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
)

type initiatePurchasePayload struct {
	ListingID       uuid.UUID `json:"listing_id" validate:"required"`
	ShippingPhone   *string   `json:"shipping_phone,omitempty" validate:"omitempty,max=32"`
	ShippingAddress *string   `json:"shipping_address,omitempty" validate:"omitempty,max=500"`
}

type confirmPurchasePayload struct {
	OrderToken string `json:"order_token" validate:"required"`
	PaymentID  string `json:"payment_id" validate:"required"`
	Signature  string `json:"signature" validate:"required"`
}

type purchaseReasonPayload struct {
	Reason   string `json:"reason" validate:"required,min=1,max=200"`
	Comments string `json:"comments" validate:"max=2000"`
}

type purchaseReviewPayload struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Body   string `json:"body" validate:"max=5000"`
}

type markShippedPayload struct {
	ArrivalDate *time.Time `json:"arrival_date,omitempty"`
}

// PurchaseInitiate opens a gateway checkout session for a listing.
func PurchaseInitiate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		var payload initiatePurchasePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.InitiatePurchase(ctx, purchases.InitiatePurchaseInput{
			ListingID:       payload.ListingID,
			BuyerID:         userID,
			ShippingPhone:   payload.ShippingPhone,
			ShippingAddress: payload.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// PurchaseConfirm handles the gateway callback and records the purchase.
func PurchaseConfirm(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		var payload confirmPurchasePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		purchase, err := svc.ConfirmPurchase(ctx, purchases.ConfirmPurchaseInput{
			OrderToken: payload.OrderToken,
			PaymentID:  payload.PaymentID,
			Signature:  payload.Signature,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

// PurchaseList returns the caller's purchase history.
func PurchaseList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		items, err := svc.ListForBuyer(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// PurchaseDetail returns one of the caller's purchases.
func PurchaseDetail(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		purchaseID, err := pathInt64(r, "purchaseId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		purchase, err := svc.GetPurchase(ctx, purchaseID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

// PurchaseReturn requests a return within the return window.
func PurchaseReturn(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		purchaseID, err := pathInt64(r, "purchaseId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload purchaseReasonPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		purchase, err := svc.RequestReturn(ctx, purchases.ReturnInput{
			PurchaseID: purchaseID,
			BuyerID:    userID,
			Reason:     payload.Reason,
			Comments:   payload.Comments,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

// PurchaseCancel requests a cancellation within the cancellation window.
func PurchaseCancel(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		purchaseID, err := pathInt64(r, "purchaseId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload purchaseReasonPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		purchase, err := svc.RequestCancellation(ctx, purchases.CancellationInput{
			PurchaseID: purchaseID,
			BuyerID:    userID,
			Reason:     payload.Reason,
			Comments:   payload.Comments,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

// PurchaseReview submits the buyer's one-time review of a purchase.
func PurchaseReview(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		purchaseID, err := pathInt64(r, "purchaseId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload purchaseReviewPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		purchase, err := svc.SubmitReview(ctx, purchases.ReviewInput{
			PurchaseID: purchaseID,
			ReviewerID: userID,
			Rating:     payload.Rating,
			Body:       payload.Body,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

// AdminPurchaseShip marks a processing purchase as shipped.
func AdminPurchaseShip(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		purchaseID, err := pathInt64(r, "purchaseId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload markShippedPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		purchase, err := svc.MarkShipped(ctx, purchaseID, payload.ArrivalDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

// AdminPurchaseDeliver marks a shipped purchase as delivered.
func AdminPurchaseDeliver(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		purchaseID, err := pathInt64(r, "purchaseId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		purchase, err := svc.MarkDelivered(ctx, purchaseID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}
