package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// AddToCartDB adds quantity of a product to the user's cart. The increment is
// a single upsert, so two concurrent adds for the same product both land
// instead of one overwriting the other.
func (c *Conf) AddToCartDB(ctx context.Context, userID, productID string, quantity int) (CartItem, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return CartItem{}, fmt.Errorf("checking product: %w", err)
	}
	if !exists {
		return CartItem{}, ErrProductNotFound
	}

	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, quantity, created_at
	`
	item := CartItem{ProductID: productID}
	err = c.db.QueryRowContext(ctx, query, userID, productID, quantity).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return CartItem{}, fmt.Errorf("upserting cart item: %w", err)
	}
	return item, nil
}

// UpdateCartItemDB sets an absolute quantity. A quantity of zero or less
// removes the line, so the client cannot leave a dead row behind.
func (c *Conf) UpdateCartItemDB(ctx context.Context, userID, productID string, quantity int) (CartItem, error) {
	if quantity <= 0 {
		if err := c.RemoveFromCartDB(ctx, userID, productID); err != nil {
			return CartItem{}, err
		}
		return CartItem{ProductID: productID, Quantity: 0}, nil
	}

	query := `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND product_id = $3
		RETURNING id, quantity, created_at
	`
	item := CartItem{ProductID: productID}
	err := c.db.QueryRowContext(ctx, query, quantity, userID, productID).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CartItem{}, ErrItemNotFound
		}
		return CartItem{}, fmt.Errorf("updating cart item: %w", err)
	}
	return item, nil
}

func (c *Conf) RemoveFromCartDB(ctx context.Context, userID, productID string) error {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("removing cart item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (c *Conf) ClearCartDB(ctx context.Context, userID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}

// GetActiveCartItems lists the user's cart joined with product details.
func (c *Conf) GetActiveCartItems(ctx context.Context, userID string) (*CartResponse, error) {
	query := `
		SELECT ci.id, ci.product_id, ci.quantity, p.name, p.price, p.image_url, ci.created_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at
	`
	rows, err := c.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying cart items: %w", err)
	}
	defer rows.Close()

	items := []CartItem{}
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity,
			&item.Name, &item.Price, &item.ImageURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart items: %w", err)
	}

	return &CartResponse{Items: items}, nil
}
