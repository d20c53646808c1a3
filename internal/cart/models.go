package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one cart line joined with the product fields the storefront
// needs to render it.
type CartItem struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	CreatedAt time.Time       `json:"created_at"`
}

type CartResponse struct {
	Items []CartItem `json:"items"`
}
