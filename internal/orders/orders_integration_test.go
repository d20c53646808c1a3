package orders

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"primestore/internal/stores/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := postgres.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.RunMigrations(db))

	_, err = db.Exec(`TRUNCATE cart_items, order_items, orders, products, categories, users CASCADE`)
	require.NoError(t, err)
	return db
}

func insertUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	userID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, 'tester', $2, 'x')`, userID, userID+"@example.com")
	require.NoError(t, err)
	return userID
}

func insertProduct(t *testing.T, db *sql.DB, price string) string {
	t.Helper()
	productID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO products (id, name, price, stock)
		VALUES ($1, 'widget', $2, 10)`, productID, price)
	require.NoError(t, err)
	return productID
}

func insertCartLine(t *testing.T, db *sql.DB, userID, productID string, quantity int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)`, userID, productID, quantity)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
	return count
}

func TestCreateOrderSnapshotsCartAndClearsIt(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	userID := insertUser(t, db)
	productA := insertProduct(t, db, "19.99")
	productB := insertProduct(t, db, "80.00")
	insertCartLine(t, db, userID, productA, 2)
	insertCartLine(t, db, userID, productB, 1)

	// 2*19.99 + 80.00 = 119.98, over the free shipping threshold
	total := decimal.RequireFromString("119.98")
	order, err := conf.CreateOrder(ctx, uuid.NewString(), userID, "pi_test_123", total)
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.True(t, order.Total.Equal(total))
	require.Len(t, order.Items, 2)

	// one item per distinct cart line, price copied at read time
	prices := map[string]string{}
	for _, item := range order.Items {
		prices[item.ProductID] = item.Price.String()
	}
	require.Equal(t, "19.99", prices[productA])
	require.Equal(t, "80", prices[productB])

	require.Equal(t, 0, countRows(t, db, "cart_items"))
	require.Equal(t, 2, countRows(t, db, "order_items"))

	fetched, err := conf.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 2)
}

func TestCreateOrderEmptyCartRejected(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	userID := insertUser(t, db)
	_, err = conf.CreateOrder(context.Background(), uuid.NewString(), userID, "", decimal.Zero)
	require.True(t, errors.Is(err, ErrEmptyCart))
	require.Equal(t, 0, countRows(t, db, "orders"))
}

func TestCreateOrderTotalMismatchRejected(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	userID := insertUser(t, db)
	productID := insertProduct(t, db, "10.00")
	insertCartLine(t, db, userID, productID, 1)

	// server expects 10.00 + 9.99 shipping
	_, err = conf.CreateOrder(context.Background(), uuid.NewString(), userID, "", decimal.RequireFromString("10.00"))
	require.True(t, errors.Is(err, ErrTotalMismatch))

	// rejected checkout leaves the cart untouched and no order behind
	require.Equal(t, 0, countRows(t, db, "orders"))
	require.Equal(t, 1, countRows(t, db, "cart_items"))
}

func TestUpdateOrderByPaymentIntent(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	userID := insertUser(t, db)
	productID := insertProduct(t, db, "150.00")
	insertCartLine(t, db, userID, productID, 1)

	order, err := conf.CreateOrder(ctx, uuid.NewString(), userID, "pi_hook_1", decimal.RequireFromString("150.00"))
	require.NoError(t, err)

	orderID, err := conf.UpdateOrderByPaymentIntent(ctx, "pi_hook_1", StatusPaid)
	require.NoError(t, err)
	require.Equal(t, order.ID, orderID)

	fetched, err := conf.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, fetched.Status)

	// replayed webhook finds no pending order
	_, err = conf.UpdateOrderByPaymentIntent(ctx, "pi_hook_1", StatusPaid)
	require.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestGetUserOrdersNewestFirst(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	userID := insertUser(t, db)
	productID := insertProduct(t, db, "150.00")

	insertCartLine(t, db, userID, productID, 1)
	first, err := conf.CreateOrder(ctx, uuid.NewString(), userID, "", decimal.RequireFromString("150.00"))
	require.NoError(t, err)

	insertCartLine(t, db, userID, productID, 1)
	second, err := conf.CreateOrder(ctx, uuid.NewString(), userID, "", decimal.RequireFromString("150.00"))
	require.NoError(t, err)

	list, err := conf.GetUserOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}
