package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopperssay/backend/pkg/enums"
)

// PaymentOrder is the ledger row written when a gateway order is created.
// The unique order token is what makes purchase confirmation idempotent.
type PaymentOrder struct {
	ID              int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	OrderToken      string                   `gorm:"column:order_token;not null;uniqueIndex:payment_orders_order_token_key"`
	ListingID       uuid.UUID                `gorm:"column:listing_id;type:uuid;not null;index:payment_orders_listing_id_idx"`
	BuyerID         int64                    `gorm:"column:buyer_id;not null;index:payment_orders_buyer_id_idx"`
	Amount          decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        string                   `gorm:"column:currency;not null"`
	ShippingPhone   *string                  `gorm:"column:shipping_phone"`
	ShippingAddress *string                  `gorm:"column:shipping_address"`
	Status          enums.PaymentOrderStatus `gorm:"column:status;not null;default:'created'"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
