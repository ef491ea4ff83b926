package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopperssay/backend/internal/listings"
	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/razorpay"
)

const (
	// ReturnWindow is how long after purchase a return can be requested.
	ReturnWindow = 7 * 24 * time.Hour
	// CancellationWindow is how long after purchase a cancellation can be requested.
	CancellationWindow = 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Service drives a purchase from checkout through its terminal state.
type Service interface {
	InitiatePurchase(ctx context.Context, input InitiatePurchaseInput) (*CheckoutSessionDTO, error)
	ConfirmPurchase(ctx context.Context, input ConfirmPurchaseInput) (*PurchaseDTO, error)
	RequestReturn(ctx context.Context, input ReturnInput) (*PurchaseDTO, error)
	RequestCancellation(ctx context.Context, input CancellationInput) (*PurchaseDTO, error)
	SubmitReview(ctx context.Context, input ReviewInput) (*PurchaseDTO, error)
	MarkShipped(ctx context.Context, purchaseID int64, arrivalDate *time.Time) (*PurchaseDTO, error)
	MarkDelivered(ctx context.Context, purchaseID int64) (*PurchaseDTO, error)
	GetPurchase(ctx context.Context, purchaseID, buyerID int64) (*PurchaseDTO, error)
	ListForBuyer(ctx context.Context, buyerID int64) ([]PurchaseDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	gateway  paymentGateway
	currency string
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams groups dependencies for the purchase service. Gateway may be
// nil; initiation and confirmation then fail with a configuration error
// instead of at boot.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Gateway  paymentGateway
	Currency string
	Logger   *logger.Logger
}

// NewService builds the purchase lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	currency := strings.TrimSpace(params.Currency)
	if currency == "" {
		currency = "INR"
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		gateway:  params.Gateway,
		currency: currency,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

func (s *service) InitiatePurchase(ctx context.Context, input InitiatePurchaseInput) (*CheckoutSessionDTO, error) {
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if input.BuyerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "payment gateway not configured")
	}

	listing, err := s.repo.FindListingByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Status != enums.ListingStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not available for purchase")
	}
	if listing.SellerID == input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot purchase your own listing")
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   listing.Price,
		Currency: s.currency,
		Receipt:  fmt.Sprintf("listing-%s", listing.ID),
		Notes: map[string]string{
			"listing_id": listing.ID.String(),
			"buyer_id":   fmt.Sprintf("%d", input.BuyerID),
		},
	})
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeValidation {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	if _, err := s.repo.CreatePaymentOrder(ctx, &models.PaymentOrder{
		OrderToken:      order.ID,
		ListingID:       listing.ID,
		BuyerID:         input.BuyerID,
		Amount:          listing.Price,
		Currency:        s.currency,
		ShippingPhone:   input.ShippingPhone,
		ShippingAddress: input.ShippingAddress,
		Status:          enums.PaymentOrderStatusCreated,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment order")
	}

	ctx = s.logg.WithListingID(ctx, listing.ID.String())
	s.logg.Info(ctx, "checkout session created")

	return &CheckoutSessionDTO{
		OrderToken: order.ID,
		GatewayKey: s.gateway.KeyID(),
		Amount:     listing.Price,
		Currency:   s.currency,
	}, nil
}

// ConfirmPurchase handles the gateway callback. Signature verification happens
// before anything is written; the rest runs in one transaction keyed on the
// payment order's conditional consumption, so replays return the purchase the
// first callback created.
func (s *service) ConfirmPurchase(ctx context.Context, input ConfirmPurchaseInput) (*PurchaseDTO, error) {
	if strings.TrimSpace(input.OrderToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order token required")
	}
	if strings.TrimSpace(input.PaymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "payment gateway not configured")
	}

	if !s.gateway.VerifyPaymentSignature(input.OrderToken, input.PaymentID, input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch")
	}

	var result *models.Purchase
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindPaymentOrderByToken(ctx, input.OrderToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment order")
		}

		consumed, err := repo.ConsumePaymentOrder(ctx, input.OrderToken)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume payment order")
		}
		if !consumed {
			if order.Status == enums.PaymentOrderStatusConsumed {
				existing, err := repo.FindPurchaseByOrderToken(ctx, input.OrderToken)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing purchase")
				}
				result = existing
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment order cannot be confirmed")
		}

		purchase := &models.Purchase{
			BuyerID:      order.BuyerID,
			OrderToken:   order.OrderToken,
			ListingPrice: order.Amount,
			OrderStatus:  enums.OrderStatusProcessing,
			PurchaseDate: s.now().UTC(),
		}

		listing, err := repo.FindListingByID(ctx, order.ListingID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}
		if listing != nil {
			listingID := listing.ID
			purchase.ListingID = &listingID
			purchase.ListingTitle = listing.Title
			// price stays order.Amount: the buyer was charged what the
			// checkout quoted, not what the listing says now
			purchase.ListingCategory = listing.Category.String()
			purchase.ListingLocation = listing.Location
			purchase.ListingImageURL = listings.PrimaryImageURL(*listing)
			purchase.SellerID = listing.SellerID

			if seller, err := repo.FindUserByID(ctx, listing.SellerID); err == nil {
				purchase.SellerName = seller.Name
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
			}

			sold, err := repo.MarkListingSold(ctx, listing.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark listing sold")
			}
			if !sold {
				// Funds are already captured; the purchase is recorded even
				// when the listing reached a terminal state first.
				s.logg.Warn(s.logg.WithListingID(ctx, listing.ID.String()), "confirmed purchase for listing no longer purchasable")
			}
		} else {
			purchase.ListingTitle = "(listing removed)"
		}

		created, err := repo.CreatePurchase(ctx, purchase)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithPurchaseID(ctx, result.ID)
	s.logg.Info(ctx, "purchase confirmed")

	dto := toPurchaseDTO(*result)
	return &dto, nil
}

func (s *service) RequestReturn(ctx context.Context, input ReturnInput) (*PurchaseDTO, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return reason required")
	}

	purchase, err := s.loadOwnedPurchase(ctx, input.PurchaseID, input.BuyerID)
	if err != nil {
		return nil, err
	}

	switch purchase.OrderStatus {
	case enums.OrderStatusCancelled, enums.OrderStatusReturned:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase cannot be returned in its current state")
	}

	if s.now().Sub(purchase.PurchaseDate) >= ReturnWindow {
		return nil, pkgerrors.New(pkgerrors.CodeReturnWindow, "return window of 7 days has passed")
	}

	reason := composeReason(input.Reason, input.Comments)
	ok, err := s.repo.TransitionPurchaseStatus(ctx, purchase.ID, purchase.OrderStatus, enums.OrderStatusReturned, map[string]any{
		"return_reason": reason,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase returned")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase changed state; retry")
	}

	return s.reload(ctx, purchase.ID)
}

// RequestCancellation flips a processing purchase to cancelled. The listing's
// sold status is intentionally left untouched; relisting is the seller's call.
func (s *service) RequestCancellation(ctx context.Context, input CancellationInput) (*PurchaseDTO, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	purchase, err := s.loadOwnedPurchase(ctx, input.PurchaseID, input.BuyerID)
	if err != nil {
		return nil, err
	}

	if purchase.OrderStatus != enums.OrderStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only processing purchases can be cancelled")
	}

	if s.now().Sub(purchase.PurchaseDate) >= CancellationWindow {
		return nil, pkgerrors.New(pkgerrors.CodeCancellationWindow, "cancellation window of 24 hours has passed")
	}

	reason := composeReason(input.Reason, input.Comments)
	ok, err := s.repo.TransitionPurchaseStatus(ctx, purchase.ID, enums.OrderStatusProcessing, enums.OrderStatusCancelled, map[string]any{
		"cancellation_reason": reason,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase cancelled")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase changed state; retry")
	}

	return s.reload(ctx, purchase.ID)
}

func (s *service) SubmitReview(ctx context.Context, input ReviewInput) (*PurchaseDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	purchase, err := s.loadOwnedPurchase(ctx, input.PurchaseID, input.ReviewerID)
	if err != nil {
		return nil, err
	}
	if purchase.ReviewSubmitted {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyReviewed, "purchase already reviewed")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		flipped, err := repo.MarkReviewSubmitted(ctx, purchase.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark review submitted")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeAlreadyReviewed, "purchase already reviewed")
		}

		reviewerName := ""
		if reviewer, err := repo.FindUserByID(ctx, input.ReviewerID); err == nil {
			reviewerName = reviewer.Name
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviewer")
		}

		if _, err := repo.CreateReview(ctx, &models.Review{
			PurchaseID:   purchase.ID,
			SellerID:     purchase.SellerID,
			ReviewerID:   input.ReviewerID,
			ReviewerName: reviewerName,
			Rating:       input.Rating,
			Body:         strings.TrimSpace(input.Body),
			ListingTitle: purchase.ListingTitle,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}

		if err := repo.RefreshSellerRating(ctx, purchase.SellerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh seller rating")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, purchase.ID)
}

func (s *service) MarkShipped(ctx context.Context, purchaseID int64, arrivalDate *time.Time) (*PurchaseDTO, error) {
	if purchaseID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}

	updates := map[string]any{}
	if arrivalDate != nil {
		updates["arrival_date"] = arrivalDate.UTC()
	}

	ok, err := s.repo.TransitionPurchaseStatus(ctx, purchaseID, enums.OrderStatusProcessing, enums.OrderStatusShipped, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase shipped")
	}
	if !ok {
		return nil, s.transitionConflict(ctx, purchaseID)
	}

	return s.reload(ctx, purchaseID)
}

func (s *service) MarkDelivered(ctx context.Context, purchaseID int64) (*PurchaseDTO, error) {
	if purchaseID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}

	ok, err := s.repo.TransitionPurchaseStatus(ctx, purchaseID, enums.OrderStatusShipped, enums.OrderStatusDelivered, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase delivered")
	}
	if !ok {
		return nil, s.transitionConflict(ctx, purchaseID)
	}

	return s.reload(ctx, purchaseID)
}

func (s *service) GetPurchase(ctx context.Context, purchaseID, buyerID int64) (*PurchaseDTO, error) {
	purchase, err := s.loadOwnedPurchase(ctx, purchaseID, buyerID)
	if err != nil {
		return nil, err
	}
	dto := toPurchaseDTO(*purchase)
	return &dto, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID int64) ([]PurchaseDTO, error) {
	if buyerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	rows, err := s.repo.ListPurchasesByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	out := make([]PurchaseDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toPurchaseDTO(row))
	}
	return out, nil
}

func (s *service) loadOwnedPurchase(ctx context.Context, purchaseID, buyerID int64) (*models.Purchase, error) {
	if purchaseID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if buyerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}

	purchase, err := s.repo.FindPurchaseByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	if purchase.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "purchase does not belong to buyer")
	}
	return purchase, nil
}

func (s *service) reload(ctx context.Context, purchaseID int64) (*PurchaseDTO, error) {
	purchase, err := s.repo.FindPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase")
	}
	dto := toPurchaseDTO(*purchase)
	return &dto, nil
}

func (s *service) transitionConflict(ctx context.Context, purchaseID int64) error {
	purchase, err := s.repo.FindPurchaseByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("transition not allowed from %s", purchase.OrderStatus)).
		WithDetails(map[string]any{"order_status": purchase.OrderStatus})
}

func composeReason(reason, comments string) string {
	reason = strings.TrimSpace(reason)
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return reason
	}
	return reason + ": " + comments
}
