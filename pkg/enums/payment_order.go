package enums

import "fmt"

// PaymentOrderStatus tracks a gateway order token through the checkout flow.
type PaymentOrderStatus string

const (
	PaymentOrderStatusCreated  PaymentOrderStatus = "created"
	PaymentOrderStatusConsumed PaymentOrderStatus = "consumed"
	PaymentOrderStatusFailed   PaymentOrderStatus = "failed"
)

var validPaymentOrderStatuses = []PaymentOrderStatus{
	PaymentOrderStatusCreated,
	PaymentOrderStatusConsumed,
	PaymentOrderStatusFailed,
}

// String implements fmt.Stringer.
func (s PaymentOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PaymentOrderStatus.
func (s PaymentOrderStatus) IsValid() bool {
	for _, candidate := range validPaymentOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePaymentOrderStatus converts raw input into a PaymentOrderStatus.
func ParsePaymentOrderStatus(value string) (PaymentOrderStatus, error) {
	for _, candidate := range validPaymentOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment order status %q", value)
}
