package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. OriginalPrice, when present, is the
// pre-discount price shown struck through in listings.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ImageURL      string           `json:"image_url"`
	Stock         int              `json:"stock"`
	Featured      bool             `json:"featured"`
	CategoryID    *string          `json:"category_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type NewProduct struct {
	Name          string           `json:"name" validate:"required,min=2,max=200"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ImageURL      string           `json:"image_url"`
	Stock         int              `json:"stock" validate:"min=0"`
	Featured      bool             `json:"featured"`
	CategoryID    *string          `json:"category_id,omitempty"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewCategory struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"required,min=2,max=100"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}
