package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusCanceled = "canceled"
)

// Order is the persisted record of a completed checkout.
type Order struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id"`
	Total                 decimal.Decimal `json:"total"`
	Status                string          `json:"status"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Items                 []OrderItem     `json:"items,omitempty"`
}

// OrderItem is the immutable snapshot of one cart line at purchase time.
// Price is copied from the product at that instant, so later catalog changes
// do not rewrite history.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// DetailedCartItem is a cart line with the product price attached, the unit
// the total computation works on.
type DetailedCartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}
