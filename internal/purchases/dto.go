package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
)

// InitiatePurchaseInput starts a checkout for a single listing.
type InitiatePurchaseInput struct {
	ListingID       uuid.UUID
	BuyerID         int64
	ShippingPhone   *string
	ShippingAddress *string
}

// CheckoutSessionDTO carries what the client needs to open the gateway widget.
type CheckoutSessionDTO struct {
	OrderToken string          `json:"order_token"`
	GatewayKey string          `json:"gateway_key"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// ConfirmPurchaseInput is the checkout callback payload.
type ConfirmPurchaseInput struct {
	OrderToken string
	PaymentID  string
	Signature  string
}

// ReturnInput captures a buyer's return request.
type ReturnInput struct {
	PurchaseID int64
	BuyerID    int64
	Reason     string
	Comments   string
}

// CancellationInput captures a buyer's cancellation request.
type CancellationInput struct {
	PurchaseID int64
	BuyerID    int64
	Reason     string
	Comments   string
}

// ReviewInput captures a buyer's one-time review of a purchase.
type ReviewInput struct {
	PurchaseID int64
	ReviewerID int64
	Rating     int
	Body       string
}

// PurchaseDTO is the buyer-facing projection of a purchase row.
type PurchaseDTO struct {
	ID                 int64             `json:"id"`
	ListingID          *uuid.UUID        `json:"listing_id,omitempty"`
	ListingTitle       string            `json:"listing_title"`
	ListingPrice       decimal.Decimal   `json:"listing_price"`
	ListingCategory    string            `json:"listing_category"`
	ListingLocation    string            `json:"listing_location"`
	ListingImageURL    string            `json:"listing_image_url"`
	SellerID           int64             `json:"seller_id"`
	SellerName         string            `json:"seller_name"`
	OrderStatus        enums.OrderStatus `json:"order_status"`
	ReviewSubmitted    bool              `json:"review_submitted"`
	PurchaseDate       time.Time         `json:"purchase_date"`
	ArrivalDate        *time.Time        `json:"arrival_date,omitempty"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	ReturnReason       *string           `json:"return_reason,omitempty"`
}

func toPurchaseDTO(p models.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:                 p.ID,
		ListingID:          p.ListingID,
		ListingTitle:       p.ListingTitle,
		ListingPrice:       p.ListingPrice,
		ListingCategory:    p.ListingCategory,
		ListingLocation:    p.ListingLocation,
		ListingImageURL:    p.ListingImageURL,
		SellerID:           p.SellerID,
		SellerName:         p.SellerName,
		OrderStatus:        p.OrderStatus,
		ReviewSubmitted:    p.ReviewSubmitted,
		PurchaseDate:       p.PurchaseDate,
		ArrivalDate:        p.ArrivalDate,
		CancellationReason: p.CancellationReason,
		ReturnReason:       p.ReturnReason,
	}
}
