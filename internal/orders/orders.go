package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrTotalMismatch = errors.New("submitted total does not match cart total")
	ErrOrderNotFound = errors.New("order not found")
)

// Orders over this subtotal ship free, everything below pays the flat fee.
var (
	freeShippingThreshold = decimal.NewFromInt(100)
	shippingFee           = decimal.RequireFromString("9.99")
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// ComputeTotal derives subtotal, shipping and total from the cart lines.
// This is the server's own arithmetic; the client-submitted figure is only
// ever compared against it, never trusted.
func ComputeTotal(items []DetailedCartItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	shipping := shippingFee
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	if subtotal.IsZero() {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

// CreateOrder turns the user's cart into an order. The cart read, the total
// check, the order and item inserts and the cart clear all run in one
// transaction; a failure at any step leaves no partial state behind.
func (c *Conf) CreateOrder(ctx context.Context, orderID, userID, paymentIntentID string, clientTotal decimal.Decimal) (Order, error) {
	order := Order{
		ID:                    orderID,
		UserID:                userID,
		Status:                StatusPending,
		StripePaymentIntentID: paymentIntentID,
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		queryCart := `
			SELECT ci.product_id, ci.quantity, p.price
			FROM cart_items ci
			JOIN products p ON p.id = ci.product_id
			WHERE ci.user_id = $1
			ORDER BY ci.created_at
			FOR UPDATE OF ci
		`
		rows, err := tx.QueryContext(ctx, queryCart, userID)
		if err != nil {
			return fmt.Errorf("querying cart: %w", err)
		}
		defer rows.Close()

		var items []DetailedCartItem
		for rows.Next() {
			var item DetailedCartItem
			if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
				return fmt.Errorf("scanning cart item: %w", err)
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating cart items: %w", err)
		}

		if len(items) == 0 {
			return ErrEmptyCart
		}

		totals := ComputeTotal(items)
		if !totals.Total.Equal(clientTotal) {
			return ErrTotalMismatch
		}
		order.Total = totals.Total

		queryOrder := `
			INSERT INTO orders (id, user_id, total, status, stripe_payment_intent_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING created_at, updated_at
		`
		err = tx.QueryRowContext(ctx, queryOrder,
			order.ID, order.UserID, order.Total, order.Status, order.StripePaymentIntentID).
			Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (order_id, product_id, quantity, price, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING id, created_at
		`
		for _, item := range items {
			orderItem := OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			err = tx.QueryRowContext(ctx, queryItem,
				order.ID, item.ProductID, item.Quantity, item.Price).
				Scan(&orderItem.ID, &orderItem.CreatedAt)
			if err != nil {
				return fmt.Errorf("inserting order item: %w", err)
			}
			order.Items = append(order.Items, orderItem)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// UpdateOrderByPaymentIntent advances the order tied to a payment intent to
// the given status. Only pending orders move; a replayed webhook is a no-op.
func (c *Conf) UpdateOrderByPaymentIntent(ctx context.Context, paymentIntentID, status string) (string, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE stripe_payment_intent_id = $2 AND status = $3
		RETURNING id
	`
	var orderID string
	err := c.db.QueryRowContext(ctx, query, status, paymentIntentID, StatusPending).Scan(&orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("updating order: %w", err)
	}
	return orderID, nil
}

// GetUserOrders lists the user's orders, newest first, without items.
func (c *Conf) GetUserOrders(ctx context.Context, userID string) ([]Order, error) {
	query := `
		SELECT id, user_id, total, status, stripe_payment_intent_id, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	ordersList := []Order{}
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Total, &order.Status,
			&order.StripePaymentIntentID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		ordersList = append(ordersList, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return ordersList, nil
}

// GetOrderByID fetches one order with its line items.
func (c *Conf) GetOrderByID(ctx context.Context, orderID string) (Order, error) {
	query := `
		SELECT id, user_id, total, status, stripe_payment_intent_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var order Order
	err := c.db.QueryRowContext(ctx, query, orderID).Scan(&order.ID, &order.UserID,
		&order.Total, &order.Status, &order.StripePaymentIntentID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("querying order: %w", err)
	}

	items, err := c.GetOrderItems(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}

func (c *Conf) GetOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}
	return items, nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
